package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/born-ml/tensorcore/internal/device"
)

func (e *env) listDevices(noTable bool) error {
	statuses, err := e.engine.Manager().Enumerate(context.Background())
	if err != nil {
		return err
	}
	if noTable {
		for _, s := range statuses {
			fmt.Fprintf(e.out, "%s\t%t\t%t\t%t\n", s.Kind, s.Compiled, s.Available, s.Selected)
		}
		return nil
	}

	table := tablewriter.NewWriter(e.out)
	table.SetHeader([]string{"Device", "Compiled", "Available", "Selected", "Backend"})
	table.SetCaption(true, fmt.Sprintf("%d device families", len(statuses)))
	table.SetBorder(false)
	for _, s := range statuses {
		table.Append([]string{
			s.Kind.String(),
			strconv.FormatBool(s.Compiled),
			strconv.FormatBool(s.Available),
			formatSelected(s),
			e.backendName(s),
		})
	}
	table.Render()
	return nil
}

func formatSelected(s device.Status) string {
	if s.Selected {
		return "*"
	}
	return ""
}

// backendName opens available families to report the driver name. Families
// that are not available are left blank rather than resolved to a fallback.
func (e *env) backendName(s device.Status) string {
	if !s.Available {
		return ""
	}
	b, err := e.engine.Open(s.Kind)
	if err != nil {
		e.log.WithError(err).WithField("device", s.Kind).Warn("cannot open backend")
		return "error"
	}
	if b.Kind() != s.Kind {
		return "unavailable"
	}
	return b.Name()
}
