package gitrepo

import (
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Analyzer reads commit history from a local checkout.
// git is treated as an external data source: failures are logged and
// surface as empty results, never as aborts.
type Analyzer struct {
	repoPath string
	log      zerolog.Logger
}

// NewAnalyzer creates an analyzer rooted at a local git checkout
func NewAnalyzer(repoPath string, logger zerolog.Logger) Analyzer {
	return Analyzer{repoPath: repoPath, log: logger}
}

// FileChange is one file touched by a commit, with its git status letter
type FileChange struct {
	Status string `json:"status"`
	Name   string `json:"name"`
}

// Commit is a parsed git log entry
type Commit struct {
	Hash    string       `json:"hash"`
	Author  string       `json:"author"`
	Email   string       `json:"email"`
	Date    string       `json:"date"`
	Message string       `json:"message"`
	Files   []FileChange `json:"files,omitempty"`
}

// RelatedCommit is a commit matched by keyword search
type RelatedCommit struct {
	Hash    string `json:"hash"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Message string `json:"message"`
	Keyword string `json:"keyword"`
}

// Expertise summarizes one developer's recent activity
type Expertise struct {
	Commits     int            `json:"commits"`
	Files       map[string]int `json:"files"`
	Specialties []string       `json:"specialties"`
	TopFiles    []string       `json:"top_files"`
}

// Snapshot bundles the three scans the support analyzer needs
type Snapshot struct {
	RecentChanges  []Commit              `json:"recent_changes"`
	Expertise      map[string]*Expertise `json:"expertise"`
	RelatedCommits []RelatedCommit       `json:"related_commits"`
}

func (a Analyzer) git(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = a.repoPath
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// RecentChanges returns commits (with touched files) from the last N days
func (a Analyzer) RecentChanges(days, limit int) []Commit {
	since := time.Now().AddDate(0, 0, -days).Format("2006-01-02")
	out, err := a.git("log", "--since="+since, "--name-status",
		"--format=%H|%an|%ae|%ai|%s", fmt.Sprintf("-n%d", limit))
	if err != nil {
		a.log.Warn().Err(err).Msg("git log failed")
		return nil
	}
	return parseLog(out)
}

// parseLog parses `git log --name-status --format="%H|%an|%ae|%ai|%s"` output
func parseLog(out string) []Commit {
	var commits []Commit
	var current *Commit

	flush := func() {
		if current != nil && len(current.Files) > 0 {
			commits = append(commits, *current)
		}
	}

	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if strings.Count(line, "|") >= 4 {
			flush()
			parts := strings.SplitN(line, "|", 5)
			current = &Commit{
				Hash:    shortHash(parts[0]),
				Author:  parts[1],
				Email:   parts[2],
				Date:    parts[3],
				Message: parts[4],
			}
			continue
		}
		if current == nil || strings.TrimSpace(line) == "" {
			continue
		}
		// Name-status lines are "M\tpath" (or "R100\told\tnew")
		fields := strings.Split(line, "\t")
		if len(fields) >= 2 && fields[0] != "" {
			current.Files = append(current.Files, FileChange{
				Status: fields[0][:1],
				Name:   fields[len(fields)-1],
			})
		}
	}
	flush()
	return commits
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

// DeveloperExpertise aggregates per-author file activity over the window
// and derives each author's top specialty areas.
func (a Analyzer) DeveloperExpertise(days int) map[string]*Expertise {
	expertise := make(map[string]*Expertise)

	since := time.Now().AddDate(0, 0, -days).Format("2006-01-02")
	out, err := a.git("log", "--since="+since, "--name-status", "--format=%an|%ae", "-n500")
	if err != nil {
		a.log.Warn().Err(err).Msg("git log failed for expertise scan")
		return expertise
	}

	var current *Expertise
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		// Author lines are "name|email"; file lines are tab-separated
		if strings.Contains(line, "|") && !strings.Contains(line, "\t") {
			author := strings.TrimSpace(strings.SplitN(line, "|", 2)[0])
			if author == "" {
				continue
			}
			if expertise[author] == nil {
				expertise[author] = &Expertise{Files: make(map[string]int)}
			}
			current = expertise[author]
			current.Commits++
			continue
		}
		if current == nil || line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) >= 2 && fields[0] != "" && strings.ContainsAny(fields[0][:1], "MAD") {
			current.Files[fields[len(fields)-1]]++
		}
	}

	for _, dev := range expertise {
		dev.Specialties = topAreas(dev.Files, 3)
		dev.TopFiles = topFiles(dev.Files, 5)
	}
	return expertise
}

// topAreas ranks directory prefixes (first two path segments) by touch count
func topAreas(files map[string]int, n int) []string {
	areas := make(map[string]int)
	for filename, count := range files {
		parts := strings.Split(filename, "/")
		area := filename
		if len(parts) > 1 {
			area = parts[0] + "/" + parts[1]
		} else if dot := strings.Index(filename, "."); dot > 0 {
			area = filename[:dot]
		}
		areas[area] += count
	}
	return rankKeys(areas, n)
}

func topFiles(files map[string]int, n int) []string {
	return rankKeys(files, n)
}

// rankKeys sorts by count descending, name ascending for stable output
func rankKeys(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// RelatedCommits searches commit messages for each keyword
func (a Analyzer) RelatedCommits(keywords []string, days, limit int) []RelatedCommit {
	since := time.Now().AddDate(0, 0, -days).Format("2006-01-02")
	var related []RelatedCommit

	for _, keyword := range keywords {
		out, err := a.git("log", "--since="+since, "--grep="+keyword,
			"--format=%H|%an|%ai|%s", fmt.Sprintf("-n%d", limit))
		if err != nil {
			a.log.Warn().Str("keyword", keyword).Err(err).Msg("git log grep failed")
			continue
		}
		for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
			parts := strings.SplitN(line, "|", 4)
			if len(parts) < 4 {
				continue
			}
			related = append(related, RelatedCommit{
				Hash:    shortHash(parts[0]),
				Author:  parts[1],
				Date:    parts[2],
				Message: parts[3],
				Keyword: keyword,
			})
		}
	}

	if len(related) > limit {
		related = related[:limit]
	}
	return related
}

// SimilarErrorFixes searches history for commits that may have fixed a
// similar problem before.
func (a Analyzer) SimilarErrorFixes(errorMessage string, days int) []RelatedCommit {
	keywords := []string{"fix", "bug", "error", "issue", "crash"}
	if fields := strings.Fields(errorMessage); len(fields) > 0 {
		keywords = append(keywords, fields[0])
	}
	return a.RelatedCommits(keywords, days, 5)
}

// TakeSnapshot runs the three history scans concurrently: recent changes,
// developer expertise, and commits that look like fixes for the reported
// problem. Each scan degrades to empty on its own; the group never errors.
func (a Analyzer) TakeSnapshot(days int, errorMessage string) Snapshot {
	var snap Snapshot
	var g errgroup.Group

	g.Go(func() error { snap.RecentChanges = a.RecentChanges(days, 20); return nil })
	g.Go(func() error { snap.Expertise = a.DeveloperExpertise(days * 10); return nil })
	g.Go(func() error { snap.RelatedCommits = a.SimilarErrorFixes(errorMessage, days*4); return nil })

	g.Wait()
	return snap
}

// ActiveAreas returns the directory areas touched by a set of commits,
// busiest first.
func ActiveAreas(commits []Commit, n int) []string {
	files := make(map[string]int)
	for _, commit := range commits {
		for _, file := range commit.Files {
			files[file.Name]++
		}
	}
	return topAreas(files, n)
}

var ticketKeyPattern = regexp.MustCompile(`(?i)([A-Z]{2,10}-\d+)`)

// CurrentBranch returns the checked-out branch name
func (a Analyzer) CurrentBranch() (string, error) {
	out, err := a.git("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ExtractTicketKey pulls a Jira issue key out of a branch name,
// e.g. feature/PROJ-123-description.
func ExtractTicketKey(branch string) string {
	return strings.ToUpper(ticketKeyPattern.FindString(branch))
}

// BranchOnRemote reports whether the branch exists on origin
func (a Analyzer) BranchOnRemote(branch string) bool {
	out, err := a.git("ls-remote", "--heads", "origin", branch)
	if err != nil {
		a.log.Warn().Str("branch", branch).Err(err).Msg("git ls-remote failed")
		return false
	}
	return strings.TrimSpace(out) != ""
}

// RecentCommits returns the last N commits without file lists
func (a Analyzer) RecentCommits(limit int) []Commit {
	out, err := a.git("log", fmt.Sprintf("-%d", limit), "--pretty=format:%H|%s|%an|%ad", "--date=short")
	if err != nil {
		a.log.Warn().Err(err).Msg("git log failed")
		return nil
	}

	var commits []Commit
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		parts := strings.SplitN(line, "|", 4)
		if len(parts) < 4 {
			continue
		}
		commits = append(commits, Commit{
			Hash:    parts[0],
			Message: parts[1],
			Author:  parts[2],
			Date:    parts[3],
		})
	}
	return commits
}

// ChangedFiles returns files touched by recent commits, falling back from
// a five-commit window down to the whole tracked file list.
func (a Analyzer) ChangedFiles() []string {
	for _, window := range []int{5, 3, 1} {
		out, err := a.git("diff", "--name-only", fmt.Sprintf("HEAD~%d..HEAD", window))
		if err != nil {
			continue
		}
		if files := splitLines(out); len(files) > 0 {
			return files
		}
	}

	if out, err := a.git("diff", "--name-only", "HEAD^..HEAD"); err == nil {
		if files := splitLines(out); len(files) > 0 {
			return files
		}
	}

	out, err := a.git("ls-files")
	if err != nil {
		a.log.Warn().Err(err).Msg("git ls-files failed")
		return nil
	}
	files := splitLines(out)
	if len(files) > 20 {
		files = files[:20]
	}
	return files
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
