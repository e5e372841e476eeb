package tabular

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Render writes every sheet as an aligned plain-text table, one block per
// sheet headed by "## <name>". Used for terminal previews and golden files.
func Render(w io.Writer, wb *Workbook) error {
	for i, s := range wb.Sheets {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "## %s (%d rows)\n", s.Name, len(s.Rows)); err != nil {
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(s.Header, "\t"))
		for _, row := range s.Rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
