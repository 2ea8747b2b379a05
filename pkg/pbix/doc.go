// Package pbix reads the metadata of Power BI model files.
//
// The loader understands three inputs:
//
//   - .pbit templates and .pbix files that carry an uncompressed DataModelSchema entry
//   - .bim files (the model.bim TMSL document exported by Tabular Editor or SSDT)
//   - .json files holding the same TMSL document
//
// Files whose model only exists as the compressed VertiPaq DataModel entry are rejected
// with ErrModelLoad; decoding that storage format is outside this package.
//
// A loaded Model is read-only. Views are exposed through small capability interfaces
// (TableSource, MeasureSource, ...) so callers can check for a view before reading it:
//
//	m, err := pbix.NewLoader(logger).Load(ctx, "sales.pbit")
//	if err != nil {
//		return err
//	}
//	if src, ok := m.(pbix.MeasureSource); ok {
//		measures, err := src.Measures()
//		...
//	}
package pbix
