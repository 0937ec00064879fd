// Package layers rebuilds the derived rasters of a mapdata.MapData from
// segmentation results.
//
//   - RebuildProvinceLayers paints province IDs, display colours and labels
//     from the pixel lists of shapes.
//   - RebuildFromLabels repaints province IDs and colours from an existing
//     LabelMatrix layer, e.g. one reloaded from a snapshot.
//   - RebuildOutlines draws an RGBA outline wherever two provinces meet.
//   - RebuildStateIDs maps the province layer to state IDs in parallel and
//     bumps the store's state tag.
//   - ProvinceColorImage exports the colour layer as a raster.Image.
//
// Options: WithLogger, WithWorkers.
//
// Errors:
//
//   - ErrViewExpired: a layer could not be acquired (store resized or closed).
//
// Unknown province IDs and out-of-range labels are soft warnings: they are
// logged once per distinct value and the pixel keeps a zero value.
package layers
