package roster

// Label is the tri-state reporting attribute derived from relationship
// state (the original spreadsheets colored rows red/green/neutral).
type Label string

// Label values.
const (
	// LabelFormer marks a relationship (or a person all of whose
	// relationships) that has transitioned to Unemployed.
	LabelFormer Label = "former"
	// LabelUnchanged marks a relationship never reconfirmed since
	// creation (update_count still 0).
	LabelUnchanged Label = "unchanged"
	// LabelReconfirmed marks an employed relationship seen again in at
	// least one later snapshot.
	LabelReconfirmed Label = "reconfirmed"
	// LabelMultiCompany marks a person holding several relationships that
	// are not all former.
	LabelMultiCompany Label = "multi-company"
)

// Label derives the reporting label for a single relationship.
func (r Relationship) Label() Label {
	if r.status == Unemployed {
		return LabelFormer
	}
	if r.updateCount == 0 {
		return LabelUnchanged
	}
	return LabelReconfirmed
}

// AggregateLabel derives the reporting label for a person across all their
// relationships: former only if every relationship is former; a single
// relationship keeps its own label; several not-all-former relationships
// collapse to multi-company.
func AggregateLabel(rels []Relationship) Label {
	if len(rels) == 0 {
		return LabelUnchanged
	}

	allFormer := true
	for _, r := range rels {
		if r.Status() != Unemployed {
			allFormer = false
			break
		}
	}
	if allFormer {
		return LabelFormer
	}
	if len(rels) == 1 {
		return rels[0].Label()
	}
	return LabelMultiCompany
}
