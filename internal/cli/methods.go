package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/prayer"
)

type methodJSON struct {
	ID           int     `json:"id"`
	Slug         string  `json:"slug"`
	Name         string  `json:"name"`
	FajrAngle    float64 `json:"fajr_angle"`
	IshaAngle    float64 `json:"isha_angle,omitempty"`
	IshaInterval int     `json:"isha_interval,omitempty"`
}

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List all calculation methods",
		Long:  "Print the table of supported calculation methods with their twilight angles.\nIDs match the Al Adhan API.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if FlagJSON {
				out := make([]methodJSON, 0, len(prayer.Methods))
				for _, m := range prayer.Methods {
					p := m.Parameters()
					out = append(out, methodJSON{
						ID:           int(m),
						Slug:         m.Slug(),
						Name:         m.String(),
						FajrAngle:    p.FajrAngle,
						IshaAngle:    p.IshaAngle,
						IshaInterval: p.IshaInterval,
					})
				}
				return writeJSON(stdout(cmd), out)
			}

			w := stdout(cmd)
			fmt.Fprintln(w, "Supported calculation methods:")
			fmt.Fprintln(w)

			tbl := display.NewTable([]string{"ID", "Slug", "Fajr", "Isha", "Name"})
			for _, m := range prayer.Methods {
				p := m.Parameters()
				isha := strconv.FormatFloat(p.IshaAngle, 'f', -1, 64) + "°"
				if p.IshaInterval > 0 {
					isha = fmt.Sprintf("%d min", p.IshaInterval)
				}
				tbl.AddRow([]string{
					strconv.Itoa(int(m)),
					m.Slug(),
					strconv.FormatFloat(p.FajrAngle, 'f', -1, 64) + "°",
					isha,
					m.String(),
				})
				if m == prayer.DefaultMethod {
					tbl.SetRowStyle(tbl.Len()-1, display.StyleAccent)
				}
			}
			fmt.Fprint(w, tbl.Render())
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Use --method <ID or slug> to select a calculation method.")
			fmt.Fprintf(w, "If omitted, %s is used.\n", prayer.DefaultMethod)
			return nil
		},
	}
}
