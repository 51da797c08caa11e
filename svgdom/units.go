package svgdom

import (
	"fmt"
	"strings"
)

// CoordinateUnits selects the coordinate system of the content
// of an element (mask content, clip path children, pattern tiles...).
type CoordinateUnits uint8

const (
	// Inherit uses the mode of the nearest ancestor specifying one,
	// or the default of the element kind.
	Inherit CoordinateUnits = iota
	ObjectBoundingBox
	UserSpaceOnUse
)

func (u CoordinateUnits) String() string {
	switch u {
	case Inherit:
		return "inherit"
	case ObjectBoundingBox:
		return "objectBoundingBox"
	case UserSpaceOnUse:
		return "userSpaceOnUse"
	default:
		return fmt.Sprintf("<unknown CoordinateUnits %d>", u)
	}
}

// RegionUnits selects the coordinate system of the
// x, y, width and height attributes of a region (mask, filter, pattern).
type RegionUnits uint8

const (
	UserSpaceOnUseRegion RegionUnits = iota
	ObjectBoundingBoxRegion
)

func (u RegionUnits) String() string {
	if u == ObjectBoundingBoxRegion {
		return "objectBoundingBox"
	}
	return "userSpaceOnUse"
}

// ParseCoordinateUnits parses the value of a content units attribute.
func ParseCoordinateUnits(s string) (CoordinateUnits, error) {
	switch strings.TrimSpace(s) {
	case "inherit":
		return Inherit, nil
	case "objectBoundingBox":
		return ObjectBoundingBox, nil
	case "userSpaceOnUse":
		return UserSpaceOnUse, nil
	default:
		return 0, fmt.Errorf("invalid coordinate units %q", s)
	}
}

// ParseRegionUnits parses the value of a region units attribute.
// The keywords are case insensitive.
func ParseRegionUnits(s string) (RegionUnits, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "userspaceonuse":
		return UserSpaceOnUseRegion, nil
	case "objectboundingbox":
		return ObjectBoundingBoxRegion, nil
	default:
		return 0, fmt.Errorf("invalid region units %q", s)
	}
}

// unitsSetting stores the explicit units attributes of an element.
type unitsSetting struct {
	placement    RegionUnits
	hasPlacement bool
	content      CoordinateUnits // Inherit when not specified
}

// PlacementUnits returns the coordinate system used to resolve
// the region attributes (x, y, width, height) of the element:
// the explicit attribute if any, or the default of its kind.
// Kinds without a placement attribute use the user space.
func (e *Element) PlacementUnits() RegionUnits {
	if e.units.hasPlacement {
		return e.units.placement
	}
	if u := e.kind.info().units; u != nil {
		return u.defaultPlacement
	}
	return UserSpaceOnUseRegion
}

// ContentUnits returns the coordinate system of the element content,
// which is never Inherit: inheritance walks up to the nearest ancestor
// with an explicit mode, and falls back to the default of the element kind.
// It does not modify the tree.
func (e *Element) ContentUnits() CoordinateUnits {
	for a := e; a != nil; a = a.parent {
		if a.units.content != Inherit {
			return a.units.content
		}
	}
	if u := e.kind.info().units; u != nil {
		return u.defaultContent
	}
	return UserSpaceOnUse
}

// setUnits handles the units attributes declared by the kind of e.
// It returns false if `name` is not one of them.
func (e *Element) setUnits(name, value string) (bool, error) {
	u := e.kind.info().units
	if u == nil || (name != u.placement && name != u.content) {
		return false, nil
	}
	next := e.units
	if name == u.placement {
		pl, err := ParseRegionUnits(value)
		if err != nil {
			return true, err
		}
		next.placement, next.hasPlacement = pl, true
	}
	if name == u.content {
		var ct CoordinateUnits
		var err error
		if name == u.placement { // gradients share one attribute
			ct = ObjectBoundingBox
			if next.placement == UserSpaceOnUseRegion {
				ct = UserSpaceOnUse
			}
		} else if ct, err = ParseCoordinateUnits(value); err != nil {
			return true, err
		}
		next.content = ct
	}
	e.setUnitsSetting(name, next)
	return true, nil
}

// SetPlacementUnits sets the region units attribute (maskUnits, filterUnits...).
// It is a no-op for kinds without such an attribute.
func (e *Element) SetPlacementUnits(u RegionUnits) {
	attrs := e.kind.info().units
	if attrs == nil || attrs.placement == "" {
		return
	}
	next := e.units
	next.placement, next.hasPlacement = u, true
	if attrs.content == attrs.placement {
		next.content = ObjectBoundingBox
		if u == UserSpaceOnUseRegion {
			next.content = UserSpaceOnUse
		}
	}
	e.setUnitsSetting(attrs.placement, next)
}

// SetContentUnits sets the content units attribute (maskContentUnits, clipPathUnits...).
// Setting Inherit removes the explicit value.
// It is a no-op for kinds without such an attribute.
func (e *Element) SetContentUnits(u CoordinateUnits) {
	attrs := e.kind.info().units
	if attrs == nil || attrs.content == attrs.placement {
		return
	}
	next := e.units
	next.content = u
	e.setUnitsSetting(attrs.content, next)
}

func (e *Element) setUnitsSetting(name string, next unitsSetting) {
	if e.removed || next == e.units {
		return
	}
	e.units = next
	var value fmt.Stringer = next.content
	if name == e.kind.info().units.placement {
		value = next.placement
	}
	e.changed(name, value, true)
}
