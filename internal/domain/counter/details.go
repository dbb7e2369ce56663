package counter

import (
	"math/rand/v2"
	"regexp"
	"strings"
	"unicode/utf8"

	domainagg "github.com/yungbote/rowcount-backend/internal/domain/aggregates"
)

// Palette is the fixed set of color tags offered for new counters.
var Palette = []string{
	"#6B7280", // gray
	"#8B5CF6", // purple
	"#10B981", // green
	"#3B82F6", // blue
	"#EAB308", // yellow
	"#F97316", // orange
	"#EF4444", // red
	"#EC4899", // pink
	"#14B8A6", // teal
	"#F59E0B", // amber
}

func RandomColor() string {
	return Palette[rand.IntN(len(Palette))]
}

var colorHexRE = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{6}|[0-9A-Fa-f]{8})$`)

// Details holds the optional descriptive fields of a counter. UpdateDetails
// replaces all of them, so a nil field clears the stored value.
type Details struct {
	ColorHex      *string `json:"color_hex"`
	TotalRows     *int    `json:"total_rows"`
	RowsPerRepeat *int    `json:"rows_per_repeat"`
	Notes         *string `json:"notes"`
}

func (d Details) normalize() (Details, error) {
	const op = "counter.update_details"
	out := Details{TotalRows: d.TotalRows, RowsPerRepeat: d.RowsPerRepeat}
	if d.ColorHex != nil {
		color := strings.TrimSpace(*d.ColorHex)
		if color != "" {
			if !colorHexRE.MatchString(color) {
				return Details{}, domainagg.Validation(op, "color must be #RRGGBB or #RRGGBBAA")
			}
			color = strings.ToUpper(color)
			out.ColorHex = &color
		}
	}
	if d.TotalRows != nil && *d.TotalRows <= 0 {
		return Details{}, domainagg.Validation(op, "total rows must be positive")
	}
	if d.RowsPerRepeat != nil && *d.RowsPerRepeat <= 0 {
		return Details{}, domainagg.Validation(op, "rows per repeat must be positive")
	}
	if d.Notes != nil {
		notes := strings.TrimSpace(*d.Notes)
		if utf8.RuneCountInString(notes) > MaxNotesLength {
			return Details{}, domainagg.Validation(op, "notes must be 4000 characters or less")
		}
		if notes != "" {
			out.Notes = &notes
		}
	}
	return out, nil
}

// UpdateDetails replaces the descriptive fields. Count and history are not
// touched.
func (c *Counter) UpdateDetails(d Details) error {
	n, err := d.normalize()
	if err != nil {
		return err
	}
	c.ColorHex = n.ColorHex
	c.TotalRows = n.TotalRows
	c.RowsPerRepeat = n.RowsPerRepeat
	c.Notes = n.Notes
	c.UpdatedAt = now()
	return nil
}
