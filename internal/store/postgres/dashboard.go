package postgres

import (
	"context"
	"fmt"
	"sort"

	"aspataal/internal/apperr"
)

type aggregateKind int

const (
	aggregateRows aggregateKind = iota
	aggregateChart
)

type aggregate struct {
	kind aggregateKind
	sql  string
}

// Chart is the labels/datasets shape consumed by the dashboard bar charts.
type Chart struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

type ChartDataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// Chart queries select (label, value) pairs.
var aggregates = map[string]aggregate{
	"patient_data_component": {aggregateRows, `SELECT
		(SELECT COUNT(*) FROM patient WHERE status = 'New') AS newcount,
		(SELECT COUNT(*) FROM patient WHERE status = 'Disburssed') AS disburssedcount,
		(SELECT COUNT(*) FROM patient WHERE status = 'In Progress') AS inprogresscount`},
	"patient_data_component_2": {aggregateRows, `SELECT
		(SELECT COALESCE(SUM(amount), 0) FROM patient
			WHERE date_trunc('month', date_added) = date_trunc('month', CURRENT_DATE)) AS current_month,
		(SELECT COALESCE(SUM(amount), 0) FROM patient
			WHERE date_trunc('year', date_added) = date_trunc('year', CURRENT_DATE)) AS current_year,
		(SELECT COALESCE(SUM(amount), 0) FROM patient) AS total`},
	"home_data_component": {aggregateRows, `SELECT
		(SELECT COUNT(*) FROM patient) AS totalpatient,
		(SELECT COUNT(*) FROM patient WHERE status = 'New') AS newpatient`},
	"home_data_component_sum": {aggregateRows, `SELECT
		(SELECT COALESCE(SUM(amount), 0) FROM patient) AS totalrevenue,
		(SELECT COALESCE(SUM(amount), 0) FROM patient
			WHERE date_trunc('month', date_added) = date_trunc('month', CURRENT_DATE)) AS revenue_this_month`},
	"barchart_revenueoverview": {aggregateChart, `SELECT
		to_char(date_trunc('month', date_added), 'FMMonth YYYY') AS label,
		COALESCE(SUM(amount), 0)::float8 AS value
		FROM patient
		WHERE date_added IS NOT NULL
		GROUP BY date_trunc('month', date_added)
		ORDER BY date_trunc('month', date_added)`},
	"barchart_patientreferred": {aggregateChart, `SELECT
		EXTRACT(DOW FROM date_added)::int::text AS label,
		COALESCE(SUM(amount), 0)::float8 AS value
		FROM patient
		WHERE date_added > CURRENT_DATE - 7
		GROUP BY EXTRACT(DOW FROM date_added)
		ORDER BY EXTRACT(DOW FROM date_added)`},
}

func (r *Repo) DashboardNames() []string {
	names := make([]string, 0, len(aggregates))
	for n := range aggregates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Dashboard runs the named aggregate. Row aggregates return the record list,
// chart aggregates a Chart.
func (r *Repo) Dashboard(ctx context.Context, name string) (any, error) {
	agg, ok := aggregates[name]
	if !ok {
		return nil, fmt.Errorf("%w: dashboard %s", apperr.ErrUnknownEntity, name)
	}
	if agg.kind == aggregateRows {
		return r.collect(ctx, agg.sql, nil)
	}

	rows, err := r.db.Query(ctx, agg.sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	chart := Chart{Labels: []string{}, Datasets: []ChartDataset{{Data: []float64{}}}}
	for rows.Next() {
		var label string
		var value float64
		if err := rows.Scan(&label, &value); err != nil {
			return nil, err
		}
		chart.Labels = append(chart.Labels, label)
		chart.Datasets[0].Data = append(chart.Datasets[0].Data, value)
	}
	return chart, rows.Err()
}
