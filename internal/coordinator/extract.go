package coordinator

import (
	"bytes"
	"fmt"
	"io"

	"github.com/Naty023/paragrep/pkg/bytebuf"
	"github.com/Naty023/paragrep/pkg/wordmatch"
)

// paragraphDelim separates records: a blank line.
var paragraphDelim = []byte("\n\n")

// extractRecords pulls complete paragraph records off the front of the
// carry buffer, tests each against the matcher, and writes accepted
// records to out with their blank-line terminator. The matcher sees the
// record without its terminator. Returns the number of records that
// matched.
func extractRecords(carry *bytebuf.Buffer, m *wordmatch.Matcher, out io.Writer) (int, error) {
	matched := 0

	for {
		data := carry.Bytes()

		i := bytes.Index(data, paragraphDelim)
		if i < 0 {
			break
		}

		if m.Match(data[:i]) {
			if _, err := out.Write(data[:i+2]); err != nil {
				return matched, fmt.Errorf("write matched record: %w", err)
			}
			matched++
		}

		carry.ConsumePrefix(i + 2)
	}

	return matched, nil
}

// flushTail treats whatever remains in the carry buffer as one final
// record: the input ended without a closing blank line. A matched tail
// is written with exactly one trailing newline, appended only if the
// input itself lacked it. The buffer is cleared either way.
func flushTail(carry *bytebuf.Buffer, m *wordmatch.Matcher, out io.Writer) (bool, error) {
	if carry.Len() == 0 {
		return false, nil
	}

	data := carry.Bytes()
	matched := m.Match(data)

	if matched {
		if _, err := out.Write(data); err != nil {
			return false, fmt.Errorf("write final record: %w", err)
		}
		if data[len(data)-1] != '\n' {
			if _, err := out.Write([]byte{'\n'}); err != nil {
				return false, fmt.Errorf("write final record: %w", err)
			}
		}
	}

	carry.Clear()
	return matched, nil
}
