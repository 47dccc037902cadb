package dialogue

import (
	"errors"

	"github.com/golang-jwt/jwt"

	"cafedesk/models"
)

// StateCodec round-trips a CallState through a URL-safe token so the
// dialogue survives the stateless webhook cycle: the provider carries the
// token back in the next turn's action URL, and nothing is stored
// server-side. Both directions are total — encoding failures yield an empty
// token and any malformed, forged or missing token decodes to the zero
// state, which restarts the caller at the main menu instead of failing the
// turn. The HMAC signature makes tampering detectable, but the token is not
// a security boundary: the secret ships with app config.
type StateCodec struct {
	secret []byte
}

func NewStateCodec(secret string) *StateCodec {
	return &StateCodec{secret: []byte(secret)}
}

type stateClaims struct {
	State models.CallState `json:"state"`
	jwt.StandardClaims
}

// Encode serializes the snapshot into a signed compact token.
func (c *StateCodec) Encode(state models.CallState) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, stateClaims{State: state})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return ""
	}
	return signed
}

// Decode reverses Encode. It never fails: anything that does not verify as a
// token this codec produced comes back as the zero state.
func (c *StateCodec) Decode(token string) models.CallState {
	if token == "" {
		return models.CallState{}
	}
	var claims stateClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return models.CallState{}
	}
	return claims.State
}
