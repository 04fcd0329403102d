package harvest

import (
	"testing"
)

// FuzzParseCommitLog fuzzes ParseCommitLog with raw git log output.
func FuzzParseCommitLog(f *testing.F) {
	seeds := []string{
		"",
		"--abc\x1falice\x1f2024-06-10T09:15:00Z\x1fmsg\n1\t2\tmain.go\n",
		"--abc\x1fbob | ops\x1f2024-06-11T14:02:11+02:00\x1fa | b\n-\t-\tlogo.png\n\n",
		"--abc\x1f\x1f2024-06-10T09:15:00Z\x1f\n",
		"--abc\x1falice\x1fyesterday\x1fmsg\n",
		"--abc\n",
		"1\t2\torphan.go\n",
		"--x\x1fy\x1f2024-06-10T09:15:00Z\n-5\tnope\tfile\n",
	}
	for _, seed := range seeds {
		f.Add([]byte(seed))
	}
	f.Add(commitLogFixture)

	f.Fuzz(func(t *testing.T, out []byte) {
		commits, err := ParseCommitLog(out)
		if err != nil {
			return
		}
		for _, c := range commits {
			if c.Author == "" {
				t.Errorf("commit %q has empty author", c.SHA)
			}
			if c.FilesChanged < 0 {
				t.Errorf("commit %q has negative file count %d", c.SHA, c.FilesChanged)
			}
		}
	})
}
