package hlsrtsp

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

func TestPlaylist(t *testing.T) {
	t.Run("12.5s duration with 5s segments", func(t *testing.T) {
		got := Playlist(12.5, "abcd1234", 5)

		want := strings.Join([]string{
			"#EXTM3U",
			"#EXT-X-VERSION:3",
			"#EXT-X-MEDIA-SEQUENCE:0",
			"#EXT-X-TARGETDURATION: 5",
			"#EXT-X-PLAYLIST-TYPE:VOD",
			"#EXTINF:5.0000, nodesc",
			"/segment.ts?file=abcd12340.ts",
			"#EXTINF:5.0000, nodesc",
			"/segment.ts?file=abcd12341.ts",
			"#EXTINF:2.5000, nodesc",
			"/segment.ts?file=abcd12342.ts",
			"#EXT-X-ENDLIST",
		}, "\r\n") + "\r\n"

		if got != want {
			t.Errorf("Playlist() = \n---------- have ----------\n%s\n---------- want ----------\n%s", got, want)
		}
	})

	t.Run("exact multiple has no short tail segment", func(t *testing.T) {
		got := Playlist(10, "abcd1234", 5)

		if strings.Count(got, "#EXTINF") != 2 {
			t.Errorf("Playlist() = %q, want 2 segments", got)
		}
		if !strings.Contains(got, "#EXTINF:5.0000, nodesc") {
			t.Errorf("Playlist() = %q, want full-length segments", got)
		}
	})
}

func TestPlaylistSegmentCount(t *testing.T) {
	// duration, segment duration
	inputs := [][]float64{
		{12.5, 5},
		{10, 5},
		{0.5, 5},
		{61, 10},
		{59.94, 5},
		{300, 5},
	}

	for _, input := range inputs {
		duration, segmentDuration := input[0], input[1]

		t.Run(fmt.Sprintf("%v/%v", duration, segmentDuration), func(t *testing.T) {
			playlist := Playlist(duration, "abcd1234", int(segmentDuration))

			wantCount := int(math.Ceil(duration / segmentDuration))
			gotCount := strings.Count(playlist, "#EXTINF")
			if gotCount != wantCount {
				t.Errorf("segment count = %d, want %d", gotCount, wantCount)
			}

			// durations must sum back to the probed duration
			re := regexp.MustCompile(`#EXTINF:([0-9.]+), nodesc`)
			var sum float64
			for _, match := range re.FindAllStringSubmatch(playlist, -1) {
				length, err := strconv.ParseFloat(match[1], 64)
				if err != nil {
					t.Fatalf("unparsable EXTINF %q", match[1])
				}
				sum += length
			}
			if math.Abs(sum-duration) > 0.0001 {
				t.Errorf("duration sum = %v, want %v", sum, duration)
			}

			if !strings.HasSuffix(playlist, "#EXT-X-ENDLIST\r\n") {
				t.Errorf("playlist does not end with ENDLIST: %q", playlist)
			}
		})
	}
}

func TestPlaylistRoundTrip(t *testing.T) {
	identifier := "abcd1234"
	playlist := Playlist(62.3, identifier, 5)

	re := regexp.MustCompile(`/segment\.ts\?file=([0-9a-z]{8})(\d+)\.ts`)
	matches := re.FindAllStringSubmatch(playlist, -1)

	if len(matches) != 13 {
		t.Fatalf("parsed %d segment URIs, want 13", len(matches))
	}

	for i, match := range matches {
		if match[1] != identifier {
			t.Errorf("URI %d identifier = %q, want %q", i, match[1], identifier)
		}

		index, err := strconv.Atoi(match[2])
		if err != nil || index != i {
			t.Errorf("URI %d index = %q, want %d", i, match[2], i)
		}
	}
}
