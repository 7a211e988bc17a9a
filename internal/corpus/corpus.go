//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package corpus

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MHA535/turftopic/internal/gen"
)

var ErrNoDocuments = errors.New("corpus holds no documents")

// Doc - one line of the corpus
type Doc struct {
	Text string     `json:"text"`
	Time *time.Time `json:"time,omitempty"`
}

// Read - ".jsonl" and ".ndjson" files hold one {"text": ..., "time": ...} object per line; anything else is
// one document per line
func Read(path string) ([]Doc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	return ReadFrom(f, ext == ".jsonl" || ext == ".ndjson")
}

// ReadFrom - blank lines are skipped; so are JSON lines with no text
func ReadFrom(r io.Reader, jsonl bool) ([]Doc, error) {
	const (
		MAXLINE = 16 * 1024 * 1024
		FAIL1   = "line %d: %w"
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), MAXLINE)

	var docs []Doc
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !jsonl {
			docs = append(docs, Doc{Text: gen.CollapseSpace(line)})
			continue
		}
		var d Doc
		if err := json.Unmarshal([]byte(line), &d); err != nil {
			return nil, fmt.Errorf(FAIL1, n, err)
		}
		if strings.TrimSpace(d.Text) == "" {
			continue
		}
		docs = append(docs, d)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	return docs, nil
}

// Bodies - the texts alone
func Bodies(docs []Doc) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Text
	}
	return out
}

// Times - every document's timestamp; false unless all of them have one
func Times(docs []Doc) ([]time.Time, bool) {
	out := make([]time.Time, len(docs))
	for i, d := range docs {
		if d.Time == nil {
			return nil, false
		}
		out[i] = *d.Time
	}
	return out, len(docs) > 0
}
