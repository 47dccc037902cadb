// Package telephony renders TwiML directives and talks to the Twilio REST
// API. It is the only package that knows the call-control wire format; the
// dialogue machine deals in abstract directives.
package telephony

import (
	"encoding/xml"

	"cafedesk/models"
)

const (
	voiceName = "alice"
	voiceLang = "en-IN"

	// gatherHints biases speech recognition toward the menu vocabulary.
	gatherHints = "reservation,book,booking,table,menu,vegan,hours,time,location,address,directions,wifi,order,speak to staff,agent,manager"
)

type Say struct {
	XMLName  xml.Name `xml:"Say"`
	Voice    string   `xml:"voice,attr,omitempty"`
	Language string   `xml:"language,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

type Gather struct {
	XMLName   xml.Name `xml:"Gather"`
	Input     string   `xml:"input,attr,omitempty"`
	Action    string   `xml:"action,attr,omitempty"`
	Method    string   `xml:"method,attr,omitempty"`
	Timeout   int      `xml:"timeout,attr,omitempty"`
	NumDigits int      `xml:"numDigits,attr,omitempty"`
	Language  string   `xml:"language,attr,omitempty"`
	Hints     string   `xml:"hints,attr,omitempty"`
	Say       *Say
}

type Redirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr,omitempty"`
	URL     string   `xml:",chardata"`
}

type Number struct {
	XMLName xml.Name `xml:"Number"`
	Value   string   `xml:",chardata"`
}

type Dial struct {
	XMLName  xml.Name `xml:"Dial"`
	CallerID string   `xml:"callerId,attr,omitempty"`
	Number   Number
}

type Play struct {
	XMLName xml.Name `xml:"Play"`
	URL     string   `xml:",chardata"`
}

type Pause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr,omitempty"`
}

type Stream struct {
	XMLName xml.Name `xml:"Stream"`
	URL     string   `xml:"url,attr"`
}

type Connect struct {
	XMLName xml.Name `xml:"Connect"`
	Stream  Stream
}

type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// Response is a TwiML document. Verb structs carry their own XMLName, so a
// heterogeneous list marshals in order.
type Response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []interface{}
}

// Render serializes the document with the XML prolog Twilio expects.
func (r Response) Render() string {
	out, err := xml.Marshal(r)
	if err != nil {
		return xml.Header + "<Response/>"
	}
	return xml.Header + string(out)
}

func say(text string) Say {
	return Say{Voice: voiceName, Language: voiceLang, Text: text}
}

// RenderDirective turns a machine directive into TwiML. turnURL already
// carries the continuation token for the next turn; a gather that captures
// nothing redirects back to it so silence still counts as a turn.
func RenderDirective(d models.Directive, turnURL string) string {
	switch d.Action {
	case models.ActionGather:
		prompt := say(d.Say)
		g := Gather{
			Input:    "speech",
			Action:   turnURL,
			Method:   "POST",
			Timeout:  7,
			Language: voiceLang,
			Say:      &prompt,
		}
		if d.GatherDigits {
			g.Input = "speech dtmf"
			g.Timeout = 5
			g.NumDigits = 1
			g.Hints = gatherHints
		}
		return Response{Verbs: []interface{}{
			g,
			Redirect{Method: "POST", URL: turnURL},
		}}.Render()

	case models.ActionTransfer:
		return Response{Verbs: []interface{}{
			say(d.Say),
			Dial{Number: Number{Value: d.TransferTo}},
		}}.Render()

	default:
		return Response{Verbs: []interface{}{
			say(d.Say),
			Hangup{},
		}}.Render()
	}
}

// RenderTransfer is RenderDirective's transfer arm with an explicit caller
// ID, used when dialing out through a number pool.
func RenderTransfer(text, number, callerID string) string {
	return Response{Verbs: []interface{}{
		say(text),
		Dial{CallerID: callerID, Number: Number{Value: number}},
	}}.Render()
}

// RenderStreamConnect answers a call in realtime mode: the provider opens a
// duplex media stream to wsURL and keeps the call up for its duration.
func RenderStreamConnect(wsURL string) string {
	return Response{Verbs: []interface{}{
		Connect{Stream: Stream{URL: wsURL}},
	}}.Render()
}

// RenderPlay is the inject-audio command body used by call updates in
// realtime mode.
func RenderPlay(audioURL string) string {
	return Response{Verbs: []interface{}{
		Play{URL: audioURL},
		Pause{Length: 1},
	}}.Render()
}
