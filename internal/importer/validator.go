package importer

import (
	"errors"
	"strconv"
	"strings"

	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/validation"
)

// Validate normalizes and checks every row. Rejected rows produce one
// "Row N: ..." message each and are left out of valid; the rest keep their
// input order. It never stops early.
func Validate(rows []RawRow, d Defaults) (valid []models.Product, errs []string) {
	for _, row := range rows {
		p, problems := ValidateRow(row, d)
		if len(problems) > 0 {
			errs = append(errs, row.Label()+": "+strings.Join(problems, "; "))
			continue
		}
		valid = append(valid, p)
	}
	return valid, errs
}

// ValidateRow normalizes one row and returns the product with every problem
// found in it. The product is only meaningful when problems is empty.
func ValidateRow(row RawRow, d Defaults) (models.Product, []string) {
	src := sourceOf(row)
	p, issues := normalize(src, d)

	failed := map[string]bool{}
	problems := make([]string, 0, len(issues))
	for _, is := range issues {
		failed[is.field] = true
		problems = append(problems, is.message)
	}

	if err := validation.ValidateStruct(p); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			for _, fe := range verr.Fields {
				field, idx := splitIndex(fe.Field)
				if failed[field] {
					continue
				}
				failed[field] = true
				problems = append(problems, fieldMessage(src, fe, field, idx))
			}
		}
	}

	if p.MinOrder.Valid && p.MaxOrder.Valid && !failed[colMinOrder.json] && !failed[colMaxOrder.json] &&
		p.MinOrder.Decimal.GreaterThan(p.MaxOrder.Decimal) {
		problems = append(problems, src.label(colMinOrder)+" must not exceed "+src.label(colMaxOrder))
	}
	if p.AvailableFrom != nil && p.AvailableTo != nil && p.AvailableFrom.After(*p.AvailableTo) {
		problems = append(problems, src.label(colAvailableFrom)+" must not be after "+src.label(colAvailableTo))
	}

	return p, problems
}

// fieldMessage rewrites a validator message to use the row's own column name.
func fieldMessage(src source, fe validation.FieldError, field string, idx int) string {
	if field == colImages.json {
		switch {
		case fe.Tag == "min":
			return src.label(colImageURL) + " is required"
		case idx == 0:
			return src.label(colImageURL) + " must be an http(s) URL"
		default:
			return src.label(colImages) + " must contain only http(s) URLs"
		}
	}

	c, ok := byField[field]
	if !ok {
		return fe.Message
	}
	return src.label(c) + strings.TrimPrefix(fe.Message, fe.Field)
}

// splitIndex turns "images[2]" into ("images", 2). Plain names return -1.
func splitIndex(name string) (string, int) {
	open := strings.IndexByte(name, '[')
	if open < 0 || !strings.HasSuffix(name, "]") {
		return name, -1
	}
	i, err := strconv.Atoi(name[open+1 : len(name)-1])
	if err != nil {
		return name[:open], -1
	}
	return name[:open], i
}
