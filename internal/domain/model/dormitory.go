// Package model holds the catalog entities served alongside the scoring core.
package model

import "math"

// Dormitory is one residence hall in the catalog. Structural fields come from
// the bundled tables; the quota fields are optional per-semester overrides.
type Dormitory struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	NameEn           string        `json:"name_en"`
	Tags             []string      `json:"tags"`
	CompetitionBadge string        `json:"competition_badge,omitempty"`
	Description      string        `json:"description"`
	Capacity         string        `json:"capacity"`
	CapacityNote     string        `json:"capacity_note,omitempty"`
	TotalPeople      int           `json:"total_people"`
	RoomType         string        `json:"room_type"`
	Features         []string      `json:"features"`
	Rooms            RoomBreakdown `json:"rooms"`
	Area             string        `json:"area,omitempty"`
	Notes            []string      `json:"notes,omitempty"`
	QuotaGeneral     *int          `json:"quota_general,omitempty"`
	QuotaFinancial   *int          `json:"quota_financial,omitempty"`
}

// RoomBreakdown counts rooms by occupancy.
type RoomBreakdown struct {
	Single int `json:"single,omitempty"`
	Double int `json:"double,omitempty"`
	Triple int `json:"triple,omitempty"`
	Quad   int `json:"quad,omitempty"`
}

// Total returns the number of rooms.
func (r RoomBreakdown) Total() int {
	return r.Single + r.Double + r.Triple + r.Quad
}

// Beds returns the number of beds implied by the room counts.
func (r RoomBreakdown) Beds() int {
	return r.Single + 2*r.Double + 3*r.Triple + 4*r.Quad
}

// RoomMix is the rounded percentage share of each room type.
type RoomMix struct {
	Single int `json:"single,omitempty"`
	Double int `json:"double,omitempty"`
	Triple int `json:"triple,omitempty"`
	Quad   int `json:"quad,omitempty"`
}

// Percentages returns the share of rooms per type rounded to whole percent.
// An empty breakdown yields a zero RoomMix.
func (r RoomBreakdown) Percentages() RoomMix {
	total := r.Total()
	if total == 0 {
		return RoomMix{}
	}
	pct := func(n int) int {
		return int(math.Round(float64(n) / float64(total) * 100))
	}
	return RoomMix{
		Single: pct(r.Single),
		Double: pct(r.Double),
		Triple: pct(r.Triple),
		Quad:   pct(r.Quad),
	}
}

// Clone returns a deep copy so callers can safely mutate the result.
func (d Dormitory) Clone() Dormitory {
	out := d
	out.Tags = append([]string(nil), d.Tags...)
	out.Features = append([]string(nil), d.Features...)
	out.Notes = append([]string(nil), d.Notes...)
	if d.QuotaGeneral != nil {
		v := *d.QuotaGeneral
		out.QuotaGeneral = &v
	}
	if d.QuotaFinancial != nil {
		v := *d.QuotaFinancial
		out.QuotaFinancial = &v
	}
	return out
}
