package speaker

// FillTitles completes primary-source talks that are missing a title with
// the title of the first secondary-source talk by the same speaker
// (matched on normalized name). Talks that already carry a title pass
// through untouched; secondary talks for speakers absent from the primary
// set are appended.
func FillTitles(primary, secondary []Talk) []Talk {
	if len(primary) == 0 {
		return append([]Talk(nil), secondary...)
	}
	if len(secondary) == 0 {
		return append([]Talk(nil), primary...)
	}

	titlesByName := make(map[string]string, len(secondary))
	for _, t := range secondary {
		if t.Title() == "" {
			continue
		}
		if _, ok := titlesByName[t.NormSpeakerName()]; !ok {
			titlesByName[t.NormSpeakerName()] = t.Title()
		}
	}

	primaryNames := make(map[string]struct{}, len(primary))
	merged := make([]Talk, 0, len(primary)+len(secondary))
	for _, t := range primary {
		primaryNames[t.NormSpeakerName()] = struct{}{}
		if t.Title() == "" {
			if title, ok := titlesByName[t.NormSpeakerName()]; ok {
				t = t.WithTitle(title)
			}
		}
		merged = append(merged, t)
	}

	for _, t := range secondary {
		if _, ok := primaryNames[t.NormSpeakerName()]; !ok {
			merged = append(merged, t)
		}
	}
	return merged
}

// MergeTalks merges agenda-derived talks into page-derived talks for the
// same speakers. A secondary talk is added only when its
// (title, conference, year) triple is not already present, so a talk listed
// on two pages yields one record.
func MergeTalks(primary, secondary []Talk) []Talk {
	merged := make([]Talk, 0, len(primary)+len(secondary))
	seen := make(map[TalkKey]struct{}, len(primary))

	for _, t := range primary {
		if _, ok := seen[t.Key()]; ok {
			continue
		}
		seen[t.Key()] = struct{}{}
		merged = append(merged, t)
	}

	for _, t := range secondary {
		if _, ok := seen[t.Key()]; ok {
			continue
		}
		seen[t.Key()] = struct{}{}
		merged = append(merged, t)
	}
	return merged
}
