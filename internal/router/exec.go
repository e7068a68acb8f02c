package router

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const headRowLimit = 5

// Execute runs a validated plan against its dataset and renders the result
// as human-readable text. Execution is fully deterministic; no completion
// service is involved.
func Execute(plan Plan, ds Dataset) (string, error) {
	switch plan.Operation {
	case opHead:
		return execHead(ds), nil
	case opDescribe:
		return execDescribe(plan, ds)
	case opCount:
		return execCount(plan, ds)
	case opSum, opAverage, opMin, opMax:
		return execNumeric(plan, ds)
	default:
		return "", fmt.Errorf("%w: unknown operation %q", ErrComputationInvalid, plan.Operation)
	}
}

func execHead(ds Dataset) string {
	var b strings.Builder
	fmt.Fprintf(&b, "First rows of %s:\n", ds.Filename)
	b.WriteString(strings.Join(ds.Columns, " | "))
	b.WriteString("\n")
	for i, row := range ds.Rows {
		if i >= headRowLimit {
			break
		}
		b.WriteString(strings.Join(row, " | "))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "(%d rows total)", len(ds.Rows))
	return b.String()
}

func execCount(plan Plan, ds Dataset) (string, error) {
	if plan.GroupBy != "" {
		return execGrouped(plan, ds)
	}
	if plan.Column == "" {
		return fmt.Sprintf("%s has %d rows.", ds.Filename, len(ds.Rows)), nil
	}
	idx, ok := columnIndex(ds, plan.Column)
	if !ok {
		return "", fmt.Errorf("%w: column %q not in %s", ErrComputationInvalid, plan.Column, ds.Filename)
	}
	n := 0
	for _, row := range ds.Rows {
		if idx < len(row) && strings.TrimSpace(row[idx]) != "" {
			n++
		}
	}
	return fmt.Sprintf("%s: %d non-empty values in column %q.", ds.Filename, n, plan.Column), nil
}

func execNumeric(plan Plan, ds Dataset) (string, error) {
	if plan.GroupBy != "" {
		return execGrouped(plan, ds)
	}
	idx, ok := columnIndex(ds, plan.Column)
	if !ok {
		return "", fmt.Errorf("%w: column %q not in %s", ErrComputationInvalid, plan.Column, ds.Filename)
	}
	values := numericColumn(ds.Rows, idx)
	if len(values) == 0 {
		return "", fmt.Errorf("%w: column %q has no numeric values", ErrComputationInvalid, plan.Column)
	}
	result := aggregate(plan.Operation, values)
	return fmt.Sprintf("%s of %q in %s: %s (over %d values)",
		plan.Operation, plan.Column, ds.Filename, formatNumber(result), len(values)), nil
}

func execGrouped(plan Plan, ds Dataset) (string, error) {
	groupIdx, ok := columnIndex(ds, plan.GroupBy)
	if !ok {
		return "", fmt.Errorf("%w: group_by column %q not in %s", ErrComputationInvalid, plan.GroupBy, ds.Filename)
	}

	valueIdx := -1
	if plan.Operation != opCount {
		idx, ok := columnIndex(ds, plan.Column)
		if !ok {
			return "", fmt.Errorf("%w: column %q not in %s", ErrComputationInvalid, plan.Column, ds.Filename)
		}
		valueIdx = idx
	}

	groups := make(map[string][]float64)
	counts := make(map[string]int)
	for _, row := range ds.Rows {
		if groupIdx >= len(row) {
			continue
		}
		key := strings.TrimSpace(row[groupIdx])
		if key == "" {
			continue
		}
		counts[key]++
		if valueIdx >= 0 && valueIdx < len(row) {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[valueIdx]), 64); err == nil {
				groups[key] = append(groups[key], v)
			}
		}
	}
	if len(counts) == 0 {
		return "", fmt.Errorf("%w: group_by column %q has no values", ErrComputationInvalid, plan.GroupBy)
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "%s of %q by %q in %s:\n", plan.Operation, plan.Column, plan.GroupBy, ds.Filename)
	if plan.Operation == opCount {
		b.Reset()
		fmt.Fprintf(&b, "count by %q in %s:\n", plan.GroupBy, ds.Filename)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %d\n", k, counts[k])
		}
		return strings.TrimRight(b.String(), "\n"), nil
	}
	for _, k := range keys {
		values := groups[k]
		if len(values) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", k, formatNumber(aggregate(plan.Operation, values)))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func execDescribe(plan Plan, ds Dataset) (string, error) {
	columns := ds.Columns
	if plan.Column != "" {
		idx, ok := columnIndex(ds, plan.Column)
		if !ok {
			return "", fmt.Errorf("%w: column %q not in %s", ErrComputationInvalid, plan.Column, ds.Filename)
		}
		columns = []string{ds.Columns[idx]}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Summary of %s (%d rows):\n", ds.Filename, len(ds.Rows))
	for _, col := range columns {
		idx, _ := columnIndex(ds, col)
		values := numericColumn(ds.Rows, idx)
		if len(values) == 0 {
			fmt.Fprintf(&b, "%s: non-numeric, %d values\n", col, nonEmptyCount(ds.Rows, idx))
			continue
		}
		fmt.Fprintf(&b, "%s: count=%d min=%s max=%s mean=%s\n",
			col, len(values),
			formatNumber(aggregate(opMin, values)),
			formatNumber(aggregate(opMax, values)),
			formatNumber(aggregate(opAverage, values)))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// numericColumn collects parseable values from one column, skipping blanks
// and non-numeric cells.
func numericColumn(rows [][]string, idx int) []float64 {
	var values []float64
	for _, row := range rows {
		if idx >= len(row) {
			continue
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64); err == nil {
			values = append(values, v)
		}
	}
	return values
}

func nonEmptyCount(rows [][]string, idx int) int {
	n := 0
	for _, row := range rows {
		if idx < len(row) && strings.TrimSpace(row[idx]) != "" {
			n++
		}
	}
	return n
}

func aggregate(op string, values []float64) float64 {
	switch op {
	case opSum:
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum
	case opAverage:
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values))
	case opMin:
		minVal := values[0]
		for _, v := range values[1:] {
			if v < minVal {
				minVal = v
			}
		}
		return minVal
	case opMax:
		maxVal := values[0]
		for _, v := range values[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		return maxVal
	}
	return 0
}

// formatNumber trims trailing zeros so whole numbers render without a
// decimal tail.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
