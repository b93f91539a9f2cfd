package depcheck

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

const (
	maxFilesPerPackage = 5
	maxSnippetsPerFile = 4
	snippetContext     = 10
)

var skipDirs = map[string]bool{
	"node_modules": true,
	"dist":         true,
	"build":        true,
	".next":        true,
	"coverage":     true,
	".git":         true,
}

var codeExtensions = map[string]bool{
	".js":  true,
	".jsx": true,
	".ts":  true,
	".tsx": true,
}

// Snippet is a code excerpt around a package reference
type Snippet struct {
	Line int    `json:"line"`
	Code string `json:"snippet"`
}

// FileUsage is every excerpt found in a single file
type FileUsage struct {
	File     string    `json:"file"`
	Snippets []Snippet `json:"snippets"`
}

// PackageUsage maps a package to the files that import it
type PackageUsage struct {
	Package string      `json:"package"`
	Matches []FileUsage `json:"matches"`
}

// packagePatterns covers ES imports, bare side-effect imports, and
// CommonJS require calls for one package name.
func packagePatterns(pkg string) []*regexp.Regexp {
	q := regexp.QuoteMeta(pkg)
	return []*regexp.Regexp{
		regexp.MustCompile(`import\s+[^;]*?from\s+['"]` + q + `['"]`),
		regexp.MustCompile(`import\s+['"]` + q + `['"]`),
		regexp.MustCompile(`require\(\s*['"]` + q + `['"]\s*\)`),
	}
}

func usesPackage(text, pkg string) bool {
	for _, re := range packagePatterns(pkg) {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// extractSnippets returns excerpts around each line mentioning the package,
// capped so one busy file cannot dominate the report.
func extractSnippets(text, pkg string) []Snippet {
	lines := strings.Split(text, "\n")
	var snippets []Snippet
	for i, line := range lines {
		if !strings.Contains(line, pkg) {
			continue
		}
		start := max(0, i-snippetContext)
		end := min(len(lines), i+snippetContext+1)
		snippets = append(snippets, Snippet{
			Line: i + 1,
			Code: strings.Join(lines[start:end], "\n"),
		})
		if len(snippets) >= maxSnippetsPerFile {
			break
		}
	}
	return snippets
}

// codeFiles walks the checkout collecting JavaScript and TypeScript
// sources, skipping generated and vendored directories.
func codeFiles(repoPath string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(repoPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if codeExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", repoPath, err)
	}
	return files, nil
}

// CollectUsage finds where each outdated package is referenced in the code
func CollectUsage(repoPath string, outdated []Outdated, logger zerolog.Logger) []PackageUsage {
	files, err := codeFiles(repoPath)
	if err != nil {
		logger.Warn().Err(err).Msg("usage scan unavailable")
		return nil
	}

	var usage []PackageUsage
	for _, o := range outdated {
		pu := PackageUsage{Package: o.Package}
		for _, file := range files {
			data, err := os.ReadFile(file)
			if err != nil {
				continue
			}
			text := string(data)
			if !usesPackage(text, o.Package) {
				continue
			}
			rel, relErr := filepath.Rel(repoPath, file)
			if relErr != nil {
				rel = file
			}
			pu.Matches = append(pu.Matches, FileUsage{
				File:     rel,
				Snippets: extractSnippets(text, o.Package),
			})
			if len(pu.Matches) >= maxFilesPerPackage {
				break
			}
		}
		if len(pu.Matches) > 0 {
			usage = append(usage, pu)
		}
	}
	return usage
}
