package harvest

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
)

// LocalHarvester reads commits from a local clone. It never produces pull
// requests.
type LocalHarvester struct {
	client   contract.GitClient
	repoPath string
}

var _ contract.Harvester = &LocalHarvester{} // Compile-time check

// NewLocalHarvester creates a harvester over the repository at repoPath.
func NewLocalHarvester(client contract.GitClient, repoPath string) *LocalHarvester {
	return &LocalHarvester{client: client, repoPath: repoPath}
}

// Fetch implements the Harvester interface.
func (h *LocalHarvester) Fetch(ctx context.Context, windowStart, windowEnd time.Time) (schema.Activity, error) {
	out, err := h.client.GetCommitLog(ctx, h.repoPath, windowStart, windowEnd)
	if err != nil {
		return schema.Activity{}, err
	}
	commits, err := ParseCommitLog(out)
	if err != nil {
		return schema.Activity{}, err
	}
	return schema.Activity{Commits: commits, PullRequests: []schema.PullRequestRecord{}}, nil
}

// ParseCommitLog parses output produced with contract.CommitLogFormat and
// --numstat. Binary files ("-" counts) add a file without line changes.
func ParseCommitLog(out []byte) ([]schema.CommitRecord, error) {
	commits := []schema.CommitRecord{}
	var current *schema.CommitRecord

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "--") {
			record, err := parseHeader(line[2:])
			if err != nil {
				return nil, err
			}
			commits = append(commits, record)
			current = &commits[len(commits)-1]
			continue
		}
		if strings.TrimSpace(line) == "" || current == nil {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) < 3 {
			continue
		}
		current.Additions += parseCount(parts[0])
		current.Deletions += parseCount(parts[1])
		current.FilesChanged++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read commit log: %w", err)
	}
	return commits, nil
}

func parseHeader(header string) (schema.CommitRecord, error) {
	parts := strings.SplitN(header, contract.CommitFieldSep, 4)
	if len(parts) < 3 {
		return schema.CommitRecord{}, fmt.Errorf("malformed commit header %q", header)
	}
	ts, err := time.Parse(time.RFC3339, parts[2])
	if err != nil {
		return schema.CommitRecord{}, fmt.Errorf("invalid commit date %q: %w", parts[2], err)
	}
	author := parts[1]
	if author == "" {
		author = schema.UnknownAuthor
	}
	record := schema.CommitRecord{SHA: parts[0], Author: author, Timestamp: ts}
	if len(parts) == 4 {
		record.Message = parts[3]
	}
	return record, nil
}

func parseCount(s string) int {
	if s == "-" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
