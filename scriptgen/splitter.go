package scriptgen

import (
	"fmt"
	"strings"
)

// Marker tokens the prompt asks the model to put in front of each section.
const (
	MarkerLocators = "###LOCATORS###"
	MarkerActions  = "###ACTIONS###"
	MarkerTest     = "###TEST###"
)

// Sections holds the three code segments cut out of a model response.
type Sections struct {
	Locators   string
	Actions    string
	TestScript string
}

// IsEmpty reports whether no section carries any text.
func (s Sections) IsEmpty() bool {
	return s.Locators == "" && s.Actions == "" && s.TestScript == ""
}

// ParseError reports a marker that could not be found in order.
type ParseError struct {
	Marker string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("marker %s not found", e.Marker)
}

// SplitStrict cuts raw into sections. Markers must appear in the order
// LOCATORS, ACTIONS, TEST; each is searched for after the previous one.
// The TEST section runs to the end of the text.
func SplitStrict(raw string) (Sections, error) {
	locStart := strings.Index(raw, MarkerLocators)
	if locStart < 0 {
		return Sections{}, &ParseError{Marker: MarkerLocators}
	}
	locBody := locStart + len(MarkerLocators)

	actRel := strings.Index(raw[locBody:], MarkerActions)
	if actRel < 0 {
		return Sections{}, &ParseError{Marker: MarkerActions}
	}
	actStart := locBody + actRel
	actBody := actStart + len(MarkerActions)

	testRel := strings.Index(raw[actBody:], MarkerTest)
	if testRel < 0 {
		return Sections{}, &ParseError{Marker: MarkerTest}
	}
	testStart := actBody + testRel
	testBody := testStart + len(MarkerTest)

	return Sections{
		Locators:   strings.TrimSpace(raw[locBody:actStart]),
		Actions:    strings.TrimSpace(raw[actBody:testStart]),
		TestScript: strings.TrimSpace(raw[testBody:]),
	}, nil
}

// Split is SplitStrict with parse failures swallowed: a response missing any
// marker yields three empty sections rather than an error. Callers must not
// assume any section is well-formed code.
func Split(raw string) Sections {
	sections, err := SplitStrict(raw)
	if err != nil {
		return Sections{}
	}
	return sections
}
