// Package listings reads comparable listings from CSV and Excel files.
//
// The first row is a header. Column names are matched case-insensitively
// and may appear in any order; only price is required:
//
//	price,odometer_km,model_year,brand,model,location,seller_type
//
// Rows whose price cannot be read are reported in Result.Skipped and left
// out. Listings with a readable but non-positive price are kept; the pricing
// engine discards them and counts them as discarded.
package listings
