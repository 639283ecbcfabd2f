// Package export renders caption cues as CMX 3600 EDL files that DaVinci
// Resolve imports as a subtitle track.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/Cdaprod/DaVinci-Resolve-3D-Caption-Glider/internal/subtitle"
)

// GenerateCaptionEDL renders cues as EDL events. Source and record
// timecodes are identical: a caption overlays the timeline it was cut
// against, so imported events line up with the footage.
func GenerateCaptionEDL(cues []subtitle.Cue, title string, frameRate float64) string {
	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = 30
	}

	isDropFrame := math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01

	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if isDropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	for i, cue := range cues {
		in := msToTimecode(cue.StartMs, fps)
		out := msToTimecode(cue.EndMs, fps)

		text := SanitizeName(strings.ReplaceAll(cue.Text, "\n", " "), 160)
		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, "AX", "V", in, out, in, out),
			fmt.Sprintf("* FROM CLIP NAME:  %s", text),
		)
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func msToTimecode(ms int, fps int) string {
	totalFrames := int(math.Round(float64(ms) * float64(fps) / 1000.0))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, frames)
}
