package service

import (
	"sort"

	"admission-api/core/constants"
	"admission-api/core/logger"
)

// The day/slot grid logic used to be duplicated across every page of the
// admissions portal; it lives here once, as pure functions, parameterized by
// the cell-resolution policy.

// DayNames is the fixed day-number to label table (Monday-based).
var DayNames = map[int]string{
	1: "Thứ 2",
	2: "Thứ 3",
	3: "Thứ 4",
	4: "Thứ 5",
	5: "Thứ 6",
	6: "Thứ 7",
	7: "Chủ nhật",
}

const UnknownDayName = "Không xác định"

// DayName resolves a dayId to its label; out-of-range ids get the unknown
// label rather than an error.
func DayName(dayID int) string {
	if name, ok := DayNames[dayID]; ok {
		return name
	}
	return UnknownDayName
}

// GridEntry is one bookable unit as the grid engine sees it. Both counselor
// schedules and paid appointments are projected into this shape.
type GridEntry struct {
	ID             string `json:"scheduleId"`
	DayID          int    `json:"dayId"`
	Day            string `json:"day"`
	SlotID         int    `json:"slotId"`
	Slot           string `json:"slot"`
	StatusID       int    `json:"statusId"`
	CounselorName  string `json:"counselorName"`
	CounselorEmail string `json:"counselorEmail"`
}

type GridDay struct {
	DayID   int    `json:"dayId"`
	DayName string `json:"dayName"`
}

type GridSlot struct {
	SlotID int    `json:"slotId"`
	Slot   string `json:"slot"`
}

// CellStatus classifies a grid cell. The mapping over status codes is total:
// every integer lands on exactly one of Available/Booked/Unknown, and cells
// without an occupying record are Empty.
type CellStatus string

const (
	CellAvailable CellStatus = "available"
	CellBooked    CellStatus = "booked"
	CellUnknown   CellStatus = "unknown"
	CellEmpty     CellStatus = "empty"
)

func ClassifyStatus(statusID int) CellStatus {
	switch statusID {
	case constants.ScheduleStatusAvailable:
		return CellAvailable
	case constants.ScheduleStatusBooked:
		return CellBooked
	default:
		return CellUnknown
	}
}

// ResolvePolicy selects how a cell shared by several counselors is resolved.
type ResolvePolicy string

const (
	// FirstMatch returns only the first record in input order, for the
	// single-counselor-per-cell rendering.
	FirstMatch ResolvePolicy = "first"
	// AllMatches returns every record occupying the cell.
	AllMatches ResolvePolicy = "all"
)

type cellKey struct {
	dayID  int
	slotID int
}

// ScheduleIndex is the derived day/slot index over one input sequence.
// Building it is deterministic for a fixed input order and drops no record.
type ScheduleIndex struct {
	Days  []GridDay  `json:"days"`
	Slots []GridSlot `json:"slots"`
	cells map[cellKey][]GridEntry
}

// BuildScheduleIndex derives the distinct days and slots present in the
// input and the (day, slot) -> records lookup.
//
// Slot labels are resolved by first occurrence: if two records share a
// slotId but disagree on the label, the earlier one wins. That policy is
// deliberate (upstream keeps labels uniform per slot); a disagreement is
// logged once per build so a drifting upstream shows up in the logs.
func BuildScheduleIndex(entries []GridEntry) *ScheduleIndex {
	idx := &ScheduleIndex{
		Days:  []GridDay{},
		Slots: []GridSlot{},
		cells: make(map[cellKey][]GridEntry, len(entries)),
	}

	seenDays := make(map[int]bool)
	slotLabels := make(map[int]string)
	conflictLogged := false

	for _, entry := range entries {
		if !seenDays[entry.DayID] {
			seenDays[entry.DayID] = true
			idx.Days = append(idx.Days, GridDay{DayID: entry.DayID, DayName: DayName(entry.DayID)})
		}

		if label, ok := slotLabels[entry.SlotID]; !ok {
			slotLabels[entry.SlotID] = entry.Slot
			idx.Slots = append(idx.Slots, GridSlot{SlotID: entry.SlotID, Slot: entry.Slot})
		} else if label != entry.Slot && !conflictLogged {
			logger.Warn("ScheduleIndex:slot label conflict, first occurrence wins",
				"slotId", entry.SlotID, "kept", label, "ignored", entry.Slot)
			conflictLogged = true
		}

		key := cellKey{dayID: entry.DayID, slotID: entry.SlotID}
		idx.cells[key] = append(idx.cells[key], entry)
	}

	sort.Slice(idx.Days, func(i, j int) bool { return idx.Days[i].DayID < idx.Days[j].DayID })
	sort.Slice(idx.Slots, func(i, j int) bool { return idx.Slots[i].SlotID < idx.Slots[j].SlotID })

	return idx
}

// CellResolution is the outcome for one (day, slot) pair. Entries is empty
// and Status is CellEmpty when nothing occupies the cell; otherwise Status
// classifies the first occupying record.
type CellResolution struct {
	DayID   int         `json:"dayId"`
	SlotID  int         `json:"slotId"`
	Status  CellStatus  `json:"status"`
	Entries []GridEntry `json:"entries"`
}

// Resolve returns the record(s) occupying (dayID, slotID) under the given
// policy. Pure: pairs absent from the input resolve to Empty, never an error.
func (idx *ScheduleIndex) Resolve(dayID, slotID int, policy ResolvePolicy) CellResolution {
	res := CellResolution{
		DayID:   dayID,
		SlotID:  slotID,
		Status:  CellEmpty,
		Entries: []GridEntry{},
	}

	occupants := idx.cells[cellKey{dayID: dayID, slotID: slotID}]
	if len(occupants) == 0 {
		return res
	}

	if policy == FirstMatch {
		res.Entries = occupants[:1:1]
	} else {
		res.Entries = occupants
	}
	res.Status = ClassifyStatus(res.Entries[0].StatusID)
	return res
}

// Grid materializes every (day, slot) cell under the given policy, row per
// slot and column per day, the structure the booking table renders.
type GridRow struct {
	Slot  GridSlot         `json:"slot"`
	Cells []CellResolution `json:"cells"`
}

type Grid struct {
	Days []GridDay `json:"days"`
	Rows []GridRow `json:"rows"`
}

func (idx *ScheduleIndex) Grid(policy ResolvePolicy) *Grid {
	grid := &Grid{Days: idx.Days, Rows: make([]GridRow, 0, len(idx.Slots))}
	for _, slot := range idx.Slots {
		row := GridRow{Slot: slot, Cells: make([]CellResolution, 0, len(idx.Days))}
		for _, day := range idx.Days {
			row.Cells = append(row.Cells, idx.Resolve(day.DayID, slot.SlotID, policy))
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}
