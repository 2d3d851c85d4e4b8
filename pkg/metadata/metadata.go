// Package metadata holds the dataset metadata records and the pure
// relational join that turns them into training and test tables.
//
// This is a pure package: decoding JSON files from disk belongs to
// internal/iometa.
package metadata

import (
	"encoding/json"
	"strings"
)

// ImageID identifies one herbarium sheet image. Metadata files in the
// wild carry it either as a JSON string or as a number, so decoding
// accepts both.
type ImageID string

// UnmarshalJSON accepts both "123" and 123.
func (id *ImageID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*id = ""
		return nil
	}
	if len(s) > 1 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*id = ImageID(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ImageID(n.String())
	return nil
}

// MarshalJSON keeps the string form.
func (id ImageID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

// String implements fmt.Stringer.
func (id ImageID) String() string { return string(id) }

// Annotation links one training image to its category and the
// institution that digitized the sheet.
type Annotation struct {
	ImageID       ImageID `json:"image_id"`
	CategoryID    int     `json:"category_id"`
	InstitutionID int     `json:"institution_id"`
}

// Image maps an image identifier to its file path relative to the
// images root.
type Image struct {
	ImageID  ImageID `json:"image_id"`
	FileName string  `json:"file_name"`
}

// Category is one taxon of the classification task.
type Category struct {
	CategoryID     int    `json:"category_id"`
	ScientificName string `json:"scientificName"`
	Family         string `json:"family"`
	Genus          string `json:"genus"`
}

// Institution is the source collection a sheet came from.
type Institution struct {
	InstitutionID int    `json:"institution_id"`
	Name          string `json:"collectionCode"`
}

// TrainMetadata mirrors the layout of train_metadata.json.
type TrainMetadata struct {
	Annotations  []Annotation  `json:"annotations"`
	Images       []Image       `json:"images"`
	Categories   []Category    `json:"categories"`
	Institutions []Institution `json:"institutions"`
}

// TrainRow is the join product annotation ⋈ image ⋈ category ⋈
// institution, keyed by image ID. Label fields stay zero-valued when a
// foreign key does not resolve.
type TrainRow struct {
	ImageID        ImageID
	CategoryID     int
	InstitutionID  int
	FileName       string
	ScientificName string
	// CanonicalName is the gnparser canonical form of ScientificName.
	// Filled by the loader, empty when parsing fails.
	CanonicalName string
	Family        string
	Genus         string
	Institution   string
}

// TrainTable is the joined training table, one row per annotation.
type TrainTable struct {
	Rows []TrainRow
	// NumClasses is max(category_id)+1 over the categories array, the
	// size of the classifier output.
	NumClasses int
}

// TestRow is one unlabeled test image.
type TestRow struct {
	ImageID  ImageID `json:"image_id"`
	FileName string  `json:"file_name"`
}

// TestTable holds the test rows in file order with an index by image ID.
type TestTable struct {
	Rows []TestRow

	byID map[ImageID]int
}

// NewTestTable builds a TestTable from rows, indexing them by image ID.
func NewTestTable(rows []TestRow) *TestTable {
	t := &TestTable{Rows: rows, byID: make(map[ImageID]int, len(rows))}
	for i, r := range rows {
		t.byID[r.ImageID] = i
	}
	return t
}

// ByID returns the row for an image ID.
func (t *TestTable) ByID(id ImageID) (TestRow, bool) {
	i, ok := t.byID[id]
	if !ok {
		return TestRow{}, false
	}
	return t.Rows[i], true
}

// Len returns the number of test rows.
func (t *TestTable) Len() int { return len(t.Rows) }

// IDs returns the image identifiers in file order.
func (t *TestTable) IDs() []ImageID {
	res := make([]ImageID, len(t.Rows))
	for i, r := range t.Rows {
		res[i] = r.ImageID
	}
	return res
}
