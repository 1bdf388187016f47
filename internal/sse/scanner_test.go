package sse_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/optcg-tools/deckchat-go/internal/sse"
)

func TestIsDataLine(t *testing.T) {
	cases := []struct {
		line     string
		wantData string
		wantOK   bool
	}{
		{`data: {"type":"RUN_STARTED"}`, `{"type":"RUN_STARTED"}`, true},
		{`event: RUN_STARTED`, "", false},
		{`: keep-alive comment`, "", false},
		{``, "", false},
		{`id: 42`, "", false},
	}

	for _, tc := range cases {
		data, ok := sse.IsDataLine(tc.line)
		if ok != tc.wantOK || data != tc.wantData {
			t.Errorf("IsDataLine(%q) = (%q, %v), want (%q, %v)", tc.line, data, ok, tc.wantData, tc.wantOK)
		}
	}
}

func TestDecoder(t *testing.T) {
	t.Run("yields data payloads and skips framing", func(t *testing.T) {
		stream := strings.Join([]string{
			"event: TEXT_MESSAGE_CONTENT",
			`data: {"delta":"a"}`,
			"",
			": comment",
			`data: {"delta":"b"}`,
			"",
			"data: [DONE]",
			"",
		}, "\n")

		decoder := sse.NewDecoder(strings.NewReader(stream))
		var got []string
		for {
			data, ok := decoder.Next()
			if !ok {
				break
			}
			got = append(got, data)
		}
		if err := decoder.Err(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{`{"delta":"a"}`, `{"delta":"b"}`}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("payload mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty stream yields nothing", func(t *testing.T) {
		decoder := sse.NewDecoder(strings.NewReader(""))
		if _, ok := decoder.Next(); ok {
			t.Errorf("expected no payloads")
		}
	})
}
