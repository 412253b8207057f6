package completion

import "github.com/segmentio/encoding/json"

// EntryNameArg is one element of Data.EntryNames: a bare entry name, or
// a {name, source} pair when the entry is an auto-import candidate.
// MarshalJSON picks the shape tsserver expects based on whether Source
// is set, matching spec.md §4.5 step 3 literally.
type EntryNameArg struct {
	Name   string
	Source string
}

func (e EntryNameArg) MarshalJSON() ([]byte, error) {
	if e.Source == "" {
		return json.Marshal(e.Name)
	}
	return json.Marshal(struct {
		Name   string `json:"name"`
		Source string `json:"source"`
	}{Name: e.Name, Source: e.Source})
}

// UnmarshalJSON accepts either shape MarshalJSON produces, so a Data
// value round-tripped through an editor's opaque CompletionItem.Data
// field decodes back to the same EntryNameArg it started as.
func (e *EntryNameArg) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		e.Name, e.Source = name, ""
		return nil
	}
	var withSource struct {
		Name   string `json:"name"`
		Source string `json:"source"`
	}
	if err := json.Unmarshal(b, &withSource); err != nil {
		return err
	}
	e.Name, e.Source = withSource.Name, withSource.Source
	return nil
}

// Data is the exact argument a completionItem/resolve call sends back
// to completionEntryDetails: it is attached to the LSP CompletionItem's
// Data field at build time and round-tripped unmodified by the client.
type Data struct {
	File       string         `json:"file"`
	Line       int            `json:"line"`
	Offset     int            `json:"offset"`
	EntryNames []EntryNameArg `json:"entryNames"`
}

// PrimarySource returns the auto-import source of the first entry name,
// if any.
func (d Data) PrimarySource() string {
	if len(d.EntryNames) == 0 {
		return ""
	}
	return d.EntryNames[0].Source
}
