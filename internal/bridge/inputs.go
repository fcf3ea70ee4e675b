package bridge

import (
	"fmt"
	"strconv"

	"github.com/nerrad567/gray-logic-bravia/internal/accessory"
	"github.com/nerrad567/gray-logic-bravia/internal/favourites"
)

// Identifier bounds for tuner inputs. Favourites whose channel number
// falls outside this range cannot be tuned through the hub and are
// dropped entirely.
const (
	minIdentifier = 1
	maxIdentifier = 999
)

// BuildInputs converts a favourites list into the exposed input list.
//
// Each qualifying favourite (channel number 1-999) becomes one input with
// a stable identifier equal to its channel number and a subtype keyed by
// the number, so renaming a favourite updates the existing entry rather
// than duplicating it. File order is preserved. Duplicate channel numbers
// keep the first occurrence.
func BuildInputs(favs []favourites.Favourite) []accessory.Input {
	inputs := make([]accessory.Input, 0, len(favs))
	seen := make(map[int]bool, len(favs))

	for _, fav := range favs {
		id, err := strconv.Atoi(fav.Number)
		if err != nil || id < minIdentifier || id > maxIdentifier {
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		inputs = append(inputs, accessory.Input{
			Identifier: id,
			Name:       fav.Name,
			Subtype:    fmt.Sprintf("in-%d", id),
		})
	}

	return inputs
}

// identifierTable builds the identifier-to-channel-number lookup used by
// SelectChannel. Identifiers are unique within one device's table.
func identifierTable(inputs []accessory.Input) map[int]string {
	table := make(map[int]string, len(inputs))
	for _, in := range inputs {
		table[in.Identifier] = strconv.Itoa(in.Identifier)
	}
	return table
}

// DiffInputs compares the directory's current input list against the
// desired one, keyed by subtype.
//
// added holds desired entries with no current counterpart, removed holds
// current entries absent from desired, and updated holds entries present
// in both whose name changed. Entries present and unchanged appear in
// none of the three.
func DiffInputs(current, desired []accessory.Input) (added, removed, updated []accessory.Input) {
	currentBySubtype := make(map[string]accessory.Input, len(current))
	for _, in := range current {
		currentBySubtype[in.Subtype] = in
	}

	desiredSubtypes := make(map[string]bool, len(desired))
	for _, in := range desired {
		desiredSubtypes[in.Subtype] = true

		existing, ok := currentBySubtype[in.Subtype]
		switch {
		case !ok:
			added = append(added, in)
		case existing.Name != in.Name:
			updated = append(updated, in)
		}
	}

	for _, in := range current {
		if !desiredSubtypes[in.Subtype] {
			removed = append(removed, in)
		}
	}

	return added, removed, updated
}
