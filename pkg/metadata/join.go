package metadata

// JoinStats counts annotations whose foreign keys did not resolve
// during the join. The join itself is a left join: unresolved rows are
// kept with zero-valued label fields.
type JoinStats struct {
	MissingImages       int
	MissingCategories   int
	MissingInstitutions int
}

// HasMissing reports whether any foreign key failed to resolve.
func (s JoinStats) HasMissing() bool {
	return s.MissingImages+s.MissingCategories+s.MissingInstitutions > 0
}

// JoinTraining joins annotations with images, categories and
// institutions, producing exactly one row per annotation.
func JoinTraining(m *TrainMetadata) (*TrainTable, JoinStats) {
	images := make(map[ImageID]Image, len(m.Images))
	for _, img := range m.Images {
		images[img.ImageID] = img
	}
	categories := make(map[int]Category, len(m.Categories))
	numClasses := 0
	for _, cat := range m.Categories {
		categories[cat.CategoryID] = cat
		if cat.CategoryID+1 > numClasses {
			numClasses = cat.CategoryID + 1
		}
	}
	institutions := make(map[int]Institution, len(m.Institutions))
	for _, inst := range m.Institutions {
		institutions[inst.InstitutionID] = inst
	}

	var stats JoinStats
	rows := make([]TrainRow, len(m.Annotations))
	for i, ann := range m.Annotations {
		row := TrainRow{
			ImageID:       ann.ImageID,
			CategoryID:    ann.CategoryID,
			InstitutionID: ann.InstitutionID,
		}
		if img, ok := images[ann.ImageID]; ok {
			row.FileName = img.FileName
		} else {
			stats.MissingImages++
		}
		if cat, ok := categories[ann.CategoryID]; ok {
			row.ScientificName = cat.ScientificName
			row.Family = cat.Family
			row.Genus = cat.Genus
		} else {
			stats.MissingCategories++
		}
		if inst, ok := institutions[ann.InstitutionID]; ok {
			row.Institution = inst.Name
		} else {
			stats.MissingInstitutions++
		}
		rows[i] = row
	}

	return &TrainTable{Rows: rows, NumClasses: numClasses}, stats
}
