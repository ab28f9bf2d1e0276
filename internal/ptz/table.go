package ptz

import "sort"

// Rule says how a command's data bytes are filled
type Rule uint8

const (
	// RuleDirection: code from the direction bitmask, data 1/2 and
	// combined 2 carry the horizontal, vertical and zoom speeds
	RuleDirection Rule = iota
	// RuleIris: data 2 carries the speed
	RuleIris
	// RuleFocus: data 1 carries the speed
	RuleFocus
	// RulePreset: data 1 is 1, data 2 the preset id
	RulePreset
	// RuleGroup: data 1 is the group id, data 2 the value or Arg
	RuleGroup
	// RulePacked: data 1 is the group id, the value is split by Pack
	RulePacked
	// RuleZero: group is validated, all bytes are zero
	RuleZero
	// RuleSwitch: data 1 is the switch id or Arg
	RuleSwitch
	// RuleRaw: all four bytes come from the caller
	RuleRaw
)

// CommandSpec is one entry of the dispatch table
type CommandSpec struct {
	Family Family
	Base   byte
	Rule   Rule
	Arg    byte

	group check
	value check
}

type specKey struct {
	family Family
	action string
}

// Entries are never written after package initialization.
var dispatch = map[specKey]CommandSpec{
	{FamilyIris, "in"}:   {Family: FamilyIris, Base: 0x48, Rule: RuleIris},
	{FamilyIris, "out"}:  {Family: FamilyIris, Base: 0x44, Rule: RuleIris},
	{FamilyIris, "stop"}: {Family: FamilyIris, Base: 0x40, Rule: RuleIris},

	{FamilyFocus, "near"}: {Family: FamilyFocus, Base: 0x42, Rule: RuleFocus},
	{FamilyFocus, "far"}:  {Family: FamilyFocus, Base: 0x41, Rule: RuleFocus},
	{FamilyFocus, "stop"}: {Family: FamilyFocus, Base: 0x40, Rule: RuleFocus},

	{FamilyPreset, "add"}:    {Family: FamilyPreset, Base: 0x81, Rule: RulePreset, value: checkPresetID},
	{FamilyPreset, "call"}:   {Family: FamilyPreset, Base: 0x82, Rule: RulePreset, value: checkPresetID},
	{FamilyPreset, "delete"}: {Family: FamilyPreset, Base: 0x83, Rule: RulePreset, value: checkPresetID},

	{FamilyCruise, "point-add"}:    {Family: FamilyCruise, Base: 0x84, Rule: RuleGroup, group: checkCruiseID, value: checkPresetID},
	{FamilyCruise, "point-delete"}: {Family: FamilyCruise, Base: 0x85, Rule: RuleGroup, group: checkCruiseID, value: checkPointPreset},
	{FamilyCruise, "speed"}:        {Family: FamilyCruise, Base: 0x86, Rule: RulePacked, group: checkCruiseID, value: checkSpeed},
	{FamilyCruise, "time"}:         {Family: FamilyCruise, Base: 0x87, Rule: RulePacked, group: checkCruiseID, value: checkTime},
	{FamilyCruise, "start"}:        {Family: FamilyCruise, Base: 0x88, Rule: RuleGroup, group: checkCruiseID},
	// Cruise and scan have no stop code of their own, the generic stop halts them.
	{FamilyCruise, "stop"}: {Family: FamilyCruise, Rule: RuleZero, group: checkCruiseID},

	{FamilyScan, "start"}: {Family: FamilyScan, Base: 0x89, Rule: RuleGroup, group: checkScanID},
	{FamilyScan, "left"}:  {Family: FamilyScan, Base: 0x89, Rule: RuleGroup, Arg: 1, group: checkScanID},
	{FamilyScan, "right"}: {Family: FamilyScan, Base: 0x89, Rule: RuleGroup, Arg: 2, group: checkScanID},
	{FamilyScan, "speed"}: {Family: FamilyScan, Base: 0x8A, Rule: RulePacked, group: checkScanID, value: checkSpeed},
	{FamilyScan, "stop"}:  {Family: FamilyScan, Rule: RuleZero, group: checkScanID},

	{FamilyWiper, "on"}:  {Family: FamilyWiper, Base: 0x8C, Rule: RuleSwitch, Arg: 1},
	{FamilyWiper, "off"}: {Family: FamilyWiper, Base: 0x8D, Rule: RuleSwitch, Arg: 1},

	{FamilyAuxiliary, "on"}:  {Family: FamilyAuxiliary, Base: 0x8C, Rule: RuleSwitch, value: checkSwitchID},
	{FamilyAuxiliary, "off"}: {Family: FamilyAuxiliary, Base: 0x8D, Rule: RuleSwitch, value: checkSwitchID},
}

// fallback is used for actions missing from dispatch
var fallback = map[Family]CommandSpec{
	FamilyMove:      {Family: FamilyMove, Rule: RuleDirection},
	FamilyIris:      {Family: FamilyIris, Base: 0x40, Rule: RuleIris},
	FamilyFocus:     {Family: FamilyFocus, Base: 0x40, Rule: RuleFocus},
	FamilyPreset:    {Family: FamilyPreset, Rule: RuleZero},
	FamilyCruise:    {Family: FamilyCruise, Rule: RuleZero},
	FamilyScan:      {Family: FamilyScan, Rule: RuleZero},
	FamilyWiper:     {Family: FamilyWiper, Rule: RuleSwitch, Arg: 1},
	FamilyAuxiliary: {Family: FamilyAuxiliary, Rule: RuleSwitch, value: checkSwitchID},
	FamilyCommon:    {Family: FamilyCommon, Rule: RuleRaw},
}

// Lookup returns the table entry for an action. For an action the table
// does not name, the family's fallback is returned with ok false.
// Unknown families yield a RuleZero entry.
func Lookup(f Family, action string) (spec CommandSpec, ok bool) {
	if spec, ok = dispatch[specKey{f, action}]; ok {
		return spec, true
	}
	if spec, ok = fallback[f]; ok {
		return spec, false
	}
	return CommandSpec{Family: f, Rule: RuleZero}, false
}

// Actions returns the named actions of a family, sorted. The common family
// has none, it takes a raw quadruple.
func Actions(f Family) []string {
	var names []string
	if f == FamilyMove {
		names = append(Directions(), ActionStop)
	} else {
		for k := range dispatch {
			if k.family == f {
				names = append(names, k.action)
			}
		}
	}
	sort.Strings(names)
	return names
}
