package main

import (
	"nansc/cmd/nansc/ui"
)

// tableView renders a table with the default styles.
type tableView struct {
	*ui.SimpleTable
}

func (t tableView) View() string {
	return t.SimpleTable.View(ui.DefaultStyles())
}

func newResultTable(items []resolvedItem) tableView {
	t := ui.NewSimpleTable("Batch Results", []string{"Input", "Result"})
	for _, it := range items {
		t.AddRow(it.Token, it.Summary())
	}
	return tableView{t}
}

func newAirportTable() tableView {
	return tableView{ui.NewSimpleTable("Reference Airports", []string{"ICAO", "Name", "City", "Country"})}
}
