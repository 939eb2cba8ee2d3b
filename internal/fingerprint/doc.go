// Package fingerprint computes the identity hash that deduplicates employee
// records across runs.
//
// The hashed input is the order-sensitive concatenation of first name, last
// name and the resolved profession, ethnicity and gender ids, written in
// base 10 without separators. Agency and salary are not part of the
// identity: an employee who moves agency or gets a raise keeps the same
// fingerprint and is not ingested again.
//
// # Example Usage
//
//	calc := fingerprint.New()
//	fp := calc.Compute("John", "Doe", professionID, ethnicityID, genderID)
//
// # Algorithms
//
// MD5 is the default and matches fingerprints written by earlier loads of the
// same store. Murmur3 (x64, 128-bit) is available through ForName. Changing
// the algorithm on a populated store makes every employee look new.
//
// # Thread Safety
//
// Both calculators are zero-size values and safe for concurrent use.
package fingerprint
