package units

import (
	"fmt"
	"strings"
)

// gasEntry describes one standard emissions species. Entries with a base
// name introduce a new dimension; entries with an expression derive the
// species from units defined earlier in the table.
type gasEntry struct {
	symbol  string
	base    string
	expr    string
	aliases []string
}

//nolint:gochecknoglobals // immutable species table, order carries definition dependencies
var standardGases = []gasEntry{
	// CO2, CH4, N2O
	{symbol: "C", base: "carbon"},
	{symbol: "CO2", expr: "12/44 * C", aliases: []string{"carbon_dioxide"}},
	{symbol: "CH4", base: "methane"},
	{symbol: "N", base: "nitrogen"},
	{symbol: "N2O", expr: "14/44 * N", aliases: []string{"nitrous_oxide"}},
	{symbol: "N2ON", expr: "14/28 * N", aliases: []string{"nitrous_oxide_farming_style"}},
	// aerosol precursors
	{symbol: "NOx", base: "NOx"},
	{symbol: "nox", expr: "NOx"},
	{symbol: "NH3", expr: "14/17 * N", aliases: []string{"ammonia"}},
	{symbol: "S", base: "sulfur"},
	{symbol: "SO2", expr: "32/64 * S", aliases: []string{"sulfur_dioxide"}},
	{symbol: "SOx", expr: "SO2"},
	{symbol: "BC", base: "black_carbon"},
	{symbol: "OC", base: "OC"},
	{symbol: "CO", base: "carbon_monoxide"},
	{symbol: "VOC", base: "VOC"},
	{symbol: "NMVOC", expr: "VOC", aliases: []string{"non_methane_volatile_organic_compounds"}},
	// CFCs
	{symbol: "CFC11", base: "CFC11"},
	{symbol: "CFC12", base: "CFC12"},
	{symbol: "CFC13", base: "CFC13"},
	{symbol: "CFC113", base: "CFC113"},
	{symbol: "CFC114", base: "CFC114"},
	{symbol: "CFC115", base: "CFC115"},
	// HCFCs
	{symbol: "HCFC21", base: "HCFC21"},
	{symbol: "HCFC22", base: "HCFC22"},
	{symbol: "HCFC123", base: "HCFC123"},
	{symbol: "HCFC124", base: "HCFC124"},
	{symbol: "HCFC141b", base: "HCFC141b"},
	{symbol: "HCFC142b", base: "HCFC142b"},
	{symbol: "HCFC225ca", base: "HCFC225ca"},
	{symbol: "HCFC225cb", base: "HCFC225cb"},
	// HFCs
	{symbol: "HFC23", base: "HFC23"},
	{symbol: "HFC32", base: "HFC32"},
	{symbol: "HFC41", base: "HFC41"},
	{symbol: "HFC125", base: "HFC125"},
	{symbol: "HFC134", base: "HFC134"},
	{symbol: "HFC134a", base: "HFC134a"},
	{symbol: "HFC143", base: "HFC143"},
	{symbol: "HFC143a", base: "HFC143a"},
	{symbol: "HFC152", base: "HFC152"},
	{symbol: "HFC152a", base: "HFC152a"},
	{symbol: "HFC161", base: "HFC161"},
	{symbol: "HFC227ea", base: "HFC227ea"},
	{symbol: "HFC236cb", base: "HFC236cb"},
	{symbol: "HFC236ea", base: "HFC236ea"},
	{symbol: "HFC236fa", base: "HFC236fa"},
	{symbol: "HFC245ca", base: "HFC245ca"},
	{symbol: "HFC245fa", base: "HFC245fa"},
	{symbol: "HFC365mfc", base: "HFC365mfc"},
	{symbol: "HFC4310mee", base: "HFC4310mee"},
	{symbol: "HFC4310", expr: "HFC4310mee"},
	// halons
	{symbol: "Halon1201", base: "Halon1201"},
	{symbol: "Halon1202", base: "Halon1202"},
	{symbol: "Halon1211", base: "Halon1211"},
	{symbol: "Halon1301", base: "Halon1301"},
	{symbol: "Halon2402", base: "Halon2402"},
	// PFCs
	{symbol: "CF4", base: "CF4"},
	{symbol: "C2F6", base: "C2F6"},
	{symbol: "cC3F6", base: "cC3F6"},
	{symbol: "C3F8", base: "C3F8"},
	{symbol: "cC4F8", base: "cC4F8"},
	{symbol: "C4F10", base: "C4F10"},
	{symbol: "C5F12", base: "C5F12"},
	{symbol: "C6F14", base: "C6F14"},
	{symbol: "C7F16", base: "C7F16"},
	{symbol: "C8F18", base: "C8F18"},
	{symbol: "C10F18", base: "C10F18"},
	// fluorinated ethers
	{symbol: "HFE125", base: "HFE125"},
	{symbol: "HFE134", base: "HFE134"},
	{symbol: "HFE143a", base: "HFE143a"},
	{symbol: "HCFE235da2", base: "HCFE235da2"},
	{symbol: "HFE245cb2", base: "HFE245cb2"},
	{symbol: "HFE245fa2", base: "HFE245fa2"},
	{symbol: "HFE347mcc3", base: "HFE347mcc3"},
	{symbol: "HFE347pcf2", base: "HFE347pcf2"},
	{symbol: "HFE356pcc3", base: "HFE356pcc3"},
	{symbol: "HFE449sl", base: "HFE449sl"},
	{symbol: "HFE569sf2", base: "HFE569sf2"},
	{symbol: "HFE4310pccc124", base: "HFE4310pccc124"},
	{symbol: "HFE236ca12", base: "HFE236ca12"},
	{symbol: "HFE338pcc13", base: "HFE338pcc13"},
	{symbol: "HFE227ea", base: "HFE227ea"},
	{symbol: "HFE236ea2", base: "HFE236ea2"},
	{symbol: "HFE236fa", base: "HFE236fa"},
	{symbol: "HFE245fa1", base: "HFE245fa1"},
	{symbol: "HFE263fb2", base: "HFE263fb2"},
	{symbol: "HFE329mcc2", base: "HFE329mcc2"},
	{symbol: "HFE338mcf2", base: "HFE338mcf2"},
	{symbol: "HFE347mcf2", base: "HFE347mcf2"},
	{symbol: "HFE356mec3", base: "HFE356mec3"},
	{symbol: "HFE356pcf2", base: "HFE356pcf2"},
	{symbol: "HFE356pcf3", base: "HFE356pcf3"},
	{symbol: "HFE365mcf3", base: "HFE365mcf3"},
	{symbol: "HFE374pc2", base: "HFE374pc2"},
	// perfluoropolyethers
	{symbol: "PFPMIE", base: "PFPMIE"},
	// misc
	{symbol: "CCl4", base: "CCl4"},
	{symbol: "CHCl3", base: "CHCl3"},
	{symbol: "CH2Cl2", base: "CH2Cl2"},
	{symbol: "CH3CCl3", base: "CH3CCl3"},
	{symbol: "CH3Cl", base: "CH3Cl"},
	{symbol: "CH3Br", base: "CH3Br"},
	{symbol: "SF5CF3", base: "SF5CF3"},
	{symbol: "SF6", base: "SF6"},
	{symbol: "NF3", base: "NF3"},
}

// AddStandards registers the standard emissions species plus the unit
// conveniences the climate community relies on: "a" for year, single
// letter day and hour, spelled-out degree names, kilotonnes and the
// concentration chain ppt/ppb/ppm. Calling it twice is a no-op.
func (r *Registry) AddStandards() error {
	if err := r.addGases(standardGases); err != nil {
		return err
	}
	for _, definition := range []string{
		"a = 1 * year = annum = yr",
		"h = hour",
		"d = day",
		"degreeC = degC",
		"degreeF = degF",
		"kt = 1000 * t",
		"ppt = [concentrations]",
		"ppb = 1000 * ppt",
		"ppm = 1000 * ppb",
	} {
		if err := r.Define(definition); err != nil {
			return err
		}
	}
	return nil
}

// addGases registers each species, its aliases, the joint mass units
// ("gCH4", "tCH4") and an all-uppercase spelling where the symbol is not
// already upper case.
func (r *Registry) addGases(gases []gasEntry) error {
	for _, gas := range gases {
		switch {
		case gas.base != "":
			if err := r.Define(fmt.Sprintf("%s = [%s]", gas.symbol, gas.base)); err != nil {
				return err
			}
			if gas.base != gas.symbol {
				if err := r.Define(gas.base + " = " + gas.symbol); err != nil {
					return err
				}
			}
		default:
			if err := r.Define(gas.symbol + " = " + gas.expr); err != nil {
				return err
			}
			for _, alias := range gas.aliases {
				if err := r.Define(alias + " = " + gas.symbol); err != nil {
					return err
				}
			}
		}

		if err := r.addMassJoint(gas.symbol); err != nil {
			return err
		}
		if upper := strings.ToUpper(gas.symbol); upper != gas.symbol {
			if err := r.Define(upper + " = " + gas.symbol); err != nil {
				return err
			}
			if err := r.addMassJoint(upper); err != nil {
				return err
			}
		}
	}
	return nil
}

// addMassJoint defines the space-free mass+species spellings, so "tCO2"
// works as well as "t CO2".
func (r *Registry) addMassJoint(symbol string) error {
	if err := r.Define("g" + symbol + " = g * " + symbol); err != nil {
		return err
	}
	return r.Define("t" + symbol + " = t * " + symbol)
}
