package display

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/backmassage/fftrim/internal/probe"
)

// StreamTable renders the probed streams with the specifier each one is
// addressed by. The "weight #" column is the position of an audio track in
// a --weights list.
func StreamTable(vd *probe.VideoData) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Index", "Type", "Codec", "Specifier", "Weight #"})

	var video, audio int
	for _, s := range vd.Streams {
		var spec, weight string
		switch s.Type {
		case probe.StreamVideo:
			spec = fmt.Sprintf("0:V:%d", video)
			video++
		case probe.StreamAudio:
			spec = fmt.Sprintf("0:a:%d", audio)
			audio++
			weight = fmt.Sprintf("%d", audio)
		}
		tw.AppendRow(table.Row{s.Index, string(s.Type), s.Codec, spec, weight})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
