package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sprint-insights/confluence"
)

var (
	docsParentTitle string
	docsLabel       string
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Publish documentation to Confluence",
}

var docsUploadCmd = &cobra.Command{
	Use:   "upload <dir>",
	Short: "Upload a docs folder as a parent page with one child page per file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]

		d, err := setup("CONFLUENCE_URL", "CONFLUENCE_USER", "CONFLUENCE_API_TOKEN", "SPACE_KEY")
		if err != nil {
			return err
		}

		files, diagrams, err := collectDocFiles(dir)
		if err != nil {
			return err
		}
		if len(files) == 0 && len(diagrams) == 0 {
			return fmt.Errorf("no documentation or diagram files under %s", dir)
		}
		if len(diagrams) > 0 {
			d.log.Info().Int("count", len(diagrams)).Msg("🖼️ found diagram files")
		}

		cc := confluence.NewClient(d.cfg, d.log)
		spaceName, err := cc.VerifySpace()
		if err != nil {
			return err
		}
		d.log.Info().Str("space", spaceName).Int("files", len(files)).Msg("📚 uploading docs")

		// Text diagrams publish like any other doc page; their source renders
		// inside a code block. Binary images cannot become storage HTML.
		pages := append(append([]string{}, files...), textDiagrams(diagrams)...)

		parentTitle := docsParentTitle
		if parentTitle == "" {
			parentTitle = filepath.Base(dir) + " Documentation"
		}
		parentBody := confluence.ParentPageContent(parentTitle, dir, len(pages),
			time.Now().Format("2006-01-02 15:04"))
		parent, parentURL, err := cc.PublishPage(parentTitle, parentBody, "")
		if err != nil {
			return fmt.Errorf("publishing parent page: %w", err)
		}

		uploaded := 0
		published := make(map[string]bool, len(pages))
		for _, file := range pages {
			data, err := os.ReadFile(file)
			if err != nil {
				d.log.Error().Err(err).Str("file", file).Msg("❌ skipping unreadable file")
				continue
			}

			title := docTitle(file)
			content := confluence.ConvertToStorage(string(data), filepath.Ext(file))
			page, _, err := cc.PublishPage(title, content, parent.ID)
			if err != nil {
				d.log.Error().Err(err).Str("file", file).Msg("❌ error publishing page")
				continue
			}
			if docsLabel != "" {
				if err := cc.AddLabel(page.ID, docsLabel); err != nil {
					d.log.Warn().Err(err).Str("page", page.ID).Msg("could not add label")
				}
			}
			published[title] = true
			uploaded++
		}

		// Flag children left over from files that no longer exist
		if children, err := cc.ChildPages(parent.ID); err == nil {
			for _, child := range children {
				if !published[child.Title] {
					d.log.Warn().Str("page", child.Title).Msg("child page has no matching source file")
				}
			}
		} else {
			d.log.Warn().Err(err).Msg("could not list existing child pages")
		}

		fmt.Printf("✅ Uploaded %d of %d files under %q\n", uploaded, len(pages), parentTitle)
		fmt.Printf("📄 %s\n", parentURL)
		return nil
	},
}

// textDiagrams filters diagram files down to the text-based formats that
// can be published as pages.
func textDiagrams(diagrams []string) []string {
	var text []string
	for _, file := range diagrams {
		switch strings.ToLower(filepath.Ext(file)) {
		case ".puml", ".plantuml":
			text = append(text, file)
		}
	}
	return text
}

// collectDocFiles walks dir for documentation and diagram files, sorted so
// page ordering is stable between runs.
func collectDocFiles(dir string) (docs, diagrams []string, err error) {
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".adoc", ".txt", ".rst":
			docs = append(docs, path)
		case ".puml", ".plantuml", ".png", ".jpg", ".jpeg", ".gif":
			diagrams = append(diagrams, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	sort.Strings(docs)
	sort.Strings(diagrams)
	return docs, diagrams, nil
}

// docTitle turns README.md into "README", api-guide.adoc into "Api Guide"
func docTitle(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	words := strings.Fields(name)
	for i, w := range words {
		if w == strings.ToLower(w) {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func init() {
	docsUploadCmd.Flags().StringVar(&docsParentTitle, "parent-title", "", "Title for the parent index page")
	docsUploadCmd.Flags().StringVar(&docsLabel, "label", "documentation", "Label to attach to uploaded pages")
	docsCmd.AddCommand(docsUploadCmd)
}
