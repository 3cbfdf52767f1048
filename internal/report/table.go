package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/cdot65/redistribution-client-checker/internal/models"
	"github.com/olekukonko/tablewriter"
)

var tableHeader = []string{
	"Hostname",
	"IP Address",
	"Serial",
	"Model",
	"SW Version",
	"App Version",
	"Device Cert Status",
	"Redist Server",
}

// Render writes the device rows as a grid table. With no rows it still
// renders the header and a "no data" marker instead of failing.
func Render(w io.Writer, rows []models.DeviceRow) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(tableHeader)
	table.SetRowLine(true)

	if len(rows) == 0 {
		fmt.Fprintln(w, "No connected redistribution clients to report.")
		table.Render()
		return
	}

	for _, r := range rows {
		table.Append([]string{
			r.Hostname,
			r.IPAddress,
			r.Serial,
			r.Model,
			r.SWVersion,
			r.AppVersion,
			r.DeviceCertStatus,
			strconv.FormatBool(r.RedistServer),
		})
	}

	table.Render()
}
