package git

import (
	"fmt"
	"path"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/go-enry/go-enry/v2"
)

// Summarize parses a unified diff and counts added and deleted lines per file
func Summarize(diff string) (*Summary, error) {
	files, _, err := gitdiff.Parse(strings.NewReader(diff))
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	summary := &Summary{Files: make([]FileStat, 0, len(files))}
	for _, f := range files {
		stat := FileStat{
			Path:       f.NewName,
			ChangeType: changeTypeOf(f),
			Binary:     f.IsBinary,
		}
		if stat.Path == "" {
			stat.Path = f.OldName
		}
		if f.IsRename {
			stat.OldPath = f.OldName
		}
		stat.Language = detectLanguage(stat.Path)

		for _, frag := range f.TextFragments {
			for _, line := range frag.Lines {
				switch line.Op {
				case gitdiff.OpAdd:
					stat.Added++
				case gitdiff.OpDelete:
					stat.Deleted++
				}
			}
		}

		summary.Added += stat.Added
		summary.Deleted += stat.Deleted
		summary.Files = append(summary.Files, stat)
	}

	return summary, nil
}

func changeTypeOf(f *gitdiff.File) ChangeType {
	switch {
	case f.IsNew:
		return ChangeTypeAdded
	case f.IsDelete:
		return ChangeTypeDeleted
	case f.IsRename:
		return ChangeTypeRenamed
	default:
		return ChangeTypeModified
	}
}

// detectLanguage names the language of a path from its name alone, the blob is not available
func detectLanguage(filePath string) string {
	if lang, _ := enry.GetLanguageByExtension(filePath); lang != "" {
		return lang
	}
	lang, _ := enry.GetLanguageByFilename(path.Base(filePath))
	return lang
}
