package api

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// registrationMarker appears in the finish response once the vendor accepted the registration.
const registrationMarker = "OK|Yeah"

// responseShape is the kind of option list an assistant endpoint returned.
type responseShape int

const (
	// shapeSelection lists choices as anchors calling step_fertig(id, label).
	shapeSelection responseShape = iota
	// shapeRegistered lists already registered items as inputs with a text label.
	shapeRegistered
)

func (s responseShape) String() string {
	switch s {
	case shapeSelection:
		return "selection"
	case shapeRegistered:
		return "registered"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// classifyResponse picks the shape: any <input> in the document means the registered shape.
func classifyResponse(doc *goquery.Document) responseShape {
	if doc.Find("input").Length() > 0 {
		return shapeRegistered
	}
	return shapeSelection
}

var optionDecoders = map[responseShape]func(*goquery.Document) ([]Option, error){
	shapeSelection:  decodeSelectionList,
	shapeRegistered: decodeRegisteredList,
}

// ParseOptions decodes an assistant response into options. Unexpected markup is a
// *ParseError; partial results are never returned.
func ParseOptions(raw string) ([]Option, error) {
	return parseOptions(slog.Default(), raw)
}

func parseOptions(logger *slog.Logger, raw string) ([]Option, error) {
	if strings.Contains(raw, registrationMarker) {
		logger.Info("registration confirmed by vendor")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, &ParseError{Reason: "invalid html", Wrapped: err}
	}

	shape := classifyResponse(doc)
	logger.Debug("parsing assistant response", "shape", shape)

	options, err := optionDecoders[shape](doc)
	if err != nil {
		return nil, &ParseError{Reason: shape.String() + " list", Wrapped: err}
	}
	return options, nil
}

func decodeSelectionList(doc *goquery.Document) ([]Option, error) {
	options := []Option{}
	var err error
	doc.Find("li").EachWithBreak(func(i int, li *goquery.Selection) bool {
		a := li.Find("a").First()
		if a.Length() == 0 {
			err = fmt.Errorf("item %d has no anchor", i)
			return false
		}
		onclick, ok := a.Attr("onclick")
		if !ok {
			err = fmt.Errorf("item %d anchor has no onclick handler", i)
			return false
		}
		id, label, perr := parseStepHandler(onclick)
		if perr != nil {
			err = fmt.Errorf("item %d: %w", i, perr)
			return false
		}
		options = append(options, Option{Name: label, Data: id})
		return true
	})
	if err != nil {
		return nil, err
	}
	return options, nil
}

var labelCleaner = strings.NewReplacer("\n", "", " ", "")

func decodeRegisteredList(doc *goquery.Document) ([]Option, error) {
	options := []Option{}
	var err error
	doc.Find("li").EachWithBreak(func(i int, li *goquery.Selection) bool {
		labelNode := childNode(li.Nodes[0], 2)
		if labelNode == nil || labelNode.Type != html.TextNode {
			err = fmt.Errorf("item %d has no label text as third child", i)
			return false
		}
		label := labelCleaner.Replace(labelNode.Data)
		id, ok := li.Find("input").First().Attr("id")
		if !ok {
			err = fmt.Errorf("item %d has no input id", i)
			return false
		}
		data, serr := stripRegisteredID(id)
		if serr != nil {
			err = fmt.Errorf("item %d: %w", i, serr)
			return false
		}
		options = append(options, Option{Name: label, Data: data})
		return true
	})
	if err != nil {
		return nil, err
	}

	if doc.Find("ion-list").Length() == 0 {
		return options, nil
	}

	doc.Find("ion-item").EachWithBreak(func(i int, item *goquery.Selection) bool {
		text := item.Find("ion-text").First()
		if text.Length() == 0 {
			err = fmt.Errorf("ion-item %d has no ion-text", i)
			return false
		}
		nameNode := childNode(text.Nodes[0], 0)
		if nameNode == nil || nameNode.Type != html.TextNode {
			err = fmt.Errorf("ion-item %d ion-text has no text", i)
			return false
		}
		handlerNode := childNode(item.Nodes[0], 1)
		if handlerNode == nil || handlerNode.Type != html.ElementNode {
			err = fmt.Errorf("ion-item %d has no handler element as second child", i)
			return false
		}
		onclick, ok := attr(handlerNode, "onclick")
		if !ok {
			err = fmt.Errorf("ion-item %d handler element has no onclick", i)
			return false
		}
		data, perr := parseIonHandler(onclick)
		if perr != nil {
			err = fmt.Errorf("ion-item %d: %w", i, perr)
			return false
		}
		options = append(options, Option{Name: nameNode.Data, Data: data})
		return true
	})
	if err != nil {
		return nil, err
	}
	return options, nil
}

// childNode returns the n-th direct child node (text nodes included), or nil.
func childNode(n *html.Node, index int) *html.Node {
	i := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if i == index {
			return c
		}
		i++
	}
	return nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
