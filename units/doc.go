// Package units provides unit handling for simple climate model data.
//
// Emissions are a flux composed of three parts: mass, the species being
// emitted and the time period, e.g. "t CO2 / yr". Mass and time are covered
// by the SI units built into every Registry, so the package defines the
// species as first-class units of their own dimension. Keeping the species
// separate from atomic masses is what prevents invalid conversions: "C" and
// "N2O" share no dimension, so converting between them fails unless a
// metric context is applied.
//
// A few conventions carried by the standard tables:
//
//   - carbon dioxide emissions can be provided as "C" or "CO2" and the two
//     interconvert freely, likewise "N", "N2O" and "N2ON"
//   - all-uppercase spellings are valid aliases, e.g. "HFC4310MEE" for
//     "HFC4310mee"
//   - hyphens and underscores are stripped from unit names on lookup
//   - mass and species combine into joint units such as "tCO2" or "gCH4"
//     so that the space in "t CO2" is optional
//
// Conversions that cross species boundaries require a context. The
// "CH4_conversions" context bridges methane and carbon via elemental mass,
// "NOx_conversions" does the same for nitrogen, and one context per global
// warming potential metric (e.g. "AR4GWP100") converts any covered species
// to its CO2 equivalent:
//
//	c, err := units.NewConverterWithContext("Mt CH4 / yr", "Mt CO2 / yr", "AR4GWP100")
//	if err != nil {
//		return err
//	}
//	v := c.ConvertFrom(1.0) // 25.0
//
// Converter construction reports incompatible units immediately. Pairs that
// a metric covers only partially (a blank cell in the metric table) build a
// converter that warns once and yields NaN for every conversion, so batch
// processing of many timeseries does not abort on a single missing metric
// value.
package units
