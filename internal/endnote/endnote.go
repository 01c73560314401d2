package endnote

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scholarbrief/internal/article"
)

// ImportFile reads a reference library export, dispatching on extension:
// .ris for the RIS tag format, .xml for EndNote XML. Every imported record
// is stamped with the endnote source.
func ImportFile(path string) ([]article.Article, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening reference file: %w", err)
	}
	defer f.Close()

	var articles []article.Article
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".ris":
		articles, err = ParseRIS(f)
	case ".xml":
		articles, err = ParseXML(f)
	default:
		return nil, fmt.Errorf("unsupported reference format %q (want .ris or .xml)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}

	for i := range articles {
		articles[i].Source = article.SourceEndNote
	}
	return articles, nil
}
