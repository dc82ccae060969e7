// Package netcdf reads just enough of a NetCDF file to tell whether it is
// one: the container signature and, for the classic formats, the header up
// to and including the global attributes.
//
// Supported containers:
//   - classic (CDF-1), 64-bit offset (CDF-2) and 64-bit data (CDF-5)
//   - NetCDF-4, detected by its HDF5 superblock signature
//
// Gzip-compressed input is decompressed on the fly.
package netcdf
