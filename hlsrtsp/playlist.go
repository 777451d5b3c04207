package hlsrtsp

import (
	"fmt"
	"strings"
)

// Playlist synthesizes a VOD manifest covering the whole probed duration, so
// the client issues sequential segment requests before any segment exists.
func Playlist(durationSec float64, identifier string, segmentDuration int) string {
	// playlist prefix
	playlist := []string{
		"#EXTM3U",
		"#EXT-X-VERSION:3",
		"#EXT-X-MEDIA-SEQUENCE:0",
		fmt.Sprintf("#EXT-X-TARGETDURATION: %d", segmentDuration),
		"#EXT-X-PLAYLIST-TYPE:VOD",
	}

	// playlist segments
	remaining := durationSec
	for index := 0; remaining > 0; index++ {
		length := float64(segmentDuration)
		if remaining < length {
			length = remaining
		}

		playlist = append(playlist,
			fmt.Sprintf("#EXTINF:%.4f, nodesc", length),
			fmt.Sprintf("/segment.ts?file=%s%d.ts", identifier, index),
		)

		remaining -= length
	}

	// playlist suffix
	playlist = append(playlist,
		"#EXT-X-ENDLIST",
	)

	// HLS playlists use CRLF line endings
	return strings.Join(playlist, "\r\n") + "\r\n"
}
