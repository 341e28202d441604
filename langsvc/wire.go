package langsvc

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/dhamidi/jfxbuilder/java"
)

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type textDocumentPositionParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

type typeHierarchyItem struct {
	Name    string              `json:"name"`
	Detail  string              `json:"detail"`
	Kind    SymbolKind          `json:"kind"`
	URI     string              `json:"uri"`
	Parents []typeHierarchyItem `json:"parents"`
}

func (t *typeHierarchyItem) toModel(seen map[string]*java.ClassHierarchyItem) *java.ClassHierarchyItem {
	key := t.URI + "#" + t.Name
	if item, ok := seen[key]; ok {
		return item
	}
	item := &java.ClassHierarchyItem{Name: t.Name, URI: t.URI}
	seen[key] = item
	for i := range t.Parents {
		item.Parents = append(item.Parents, t.Parents[i].toModel(seen))
	}
	return item
}

// documentSymbol also accepts the flat SymbolInformation shape, which has
// a location instead of a range.
type documentSymbol struct {
	Name     string           `json:"name"`
	Detail   string           `json:"detail"`
	Kind     SymbolKind       `json:"kind"`
	Range    Range            `json:"range"`
	Location *Location        `json:"location"`
	Children []documentSymbol `json:"children"`
}

func (d *documentSymbol) toSymbol() Symbol {
	s := Symbol{Name: d.Name, Detail: d.Detail, Kind: d.Kind, Range: d.Range}
	if d.Location != nil {
		s.Range = d.Location.Range
	}
	for i := range d.Children {
		s.Children = append(s.Children, d.Children[i].toSymbol())
	}
	return s
}

type publishDiagnosticsParams struct {
	URI         string           `json:"uri"`
	Diagnostics []wireDiagnostic `json:"diagnostics"`
}

type wireDiagnostic struct {
	Range    Range           `json:"range"`
	Severity int             `json:"severity"`
	Code     json.RawMessage `json:"code"`
	Source   string          `json:"source"`
	Message  string          `json:"message"`
}

func (w *wireDiagnostic) toDiagnostic() Diagnostic {
	return Diagnostic{
		Range:    w.Range,
		Severity: w.Severity,
		Code:     decodeCode(w.Code),
		Source:   w.Source,
		Message:  w.Message,
	}
}

// decodeCode accepts a JSON string or number.
func decodeCode(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return strings.Trim(string(raw), `"`)
}

type locationOrLink struct {
	URI                  string `json:"uri"`
	Range                Range  `json:"range"`
	TargetURI            string `json:"targetUri"`
	TargetSelectionRange Range  `json:"targetSelectionRange"`
}

func (l *locationOrLink) toLocation() Location {
	if l.TargetURI != "" {
		return Location{URI: l.TargetURI, Range: l.TargetSelectionRange}
	}
	return Location{URI: l.URI, Range: l.Range}
}

// decodeLocations accepts null, a single Location, or an array of
// Location or LocationLink.
func decodeLocations(raw json.RawMessage) ([]Location, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var many []locationOrLink
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil, err
		}
	} else {
		var one locationOrLink
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, err
		}
		many = append(many, one)
	}
	locations := make([]Location, 0, len(many))
	for i := range many {
		locations = append(locations, many[i].toLocation())
	}
	return locations, nil
}

type languageStatus struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
