package phantom

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// LoadCompanies reads the tracked company list from a CSV file. Each row is
// a company profile URL optionally followed by a display name. A header row
// starting with "profile_url" is skipped.
func LoadCompanies(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open companies file: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read companies file %s: %w", path, err)
	}

	companies := make(map[string]string, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		url := strings.TrimSpace(row[0])
		if url == "" {
			continue
		}
		if i == 0 && strings.EqualFold(url, "profile_url") {
			continue
		}
		name := ""
		if len(row) > 1 {
			name = strings.TrimSpace(row[1])
		}
		companies[url] = name
	}
	return companies, nil
}
