// Package io reads and writes concept map documents.
//
// # JSON Format
//
// Documents are stored as a JSON object with two arrays. Nodes are listed in
// z-order (later nodes draw on top); arrows refer to nodes by their index in
// that list:
//
//	{
//	  "nodes": [
//	    {"type": "node", "x": 20, "y": 20, "text": "Plants"},
//	    {"type": "textnode", "x": 160, "y": 20, "text": "need"},
//	    {"type": "node", "x": 300, "y": 20, "text": "Water"}
//	  ],
//	  "arrows": [
//	    {"start": 0, "end": 1},
//	    {"start": 1, "end": 2}
//	  ]
//	}
//
// Every node field and both arrow fields are required. Node sizes are not
// stored: they are recomputed from the text with the reader's font metrics.
// Nodes with an unrecognized "type" are skipped, and arrow indices refer to
// the nodes that were kept.
//
// # Import
//
// [ReadJSON] and [ImportJSON] always build a fresh [cmap.Document]. On any
// error the caller's document is untouched, so a failed load is safe to
// retry:
//
//	doc, err := io.ImportJSON("map.json", fonts.MustFace(fonts.DefaultSize))
//	if err != nil {
//	    return err // INVALID_DOCUMENT, INVALID_ARROW or IO_ERROR
//	}
//	ctrl.SetDocument(doc)
//
// # Triples
//
// [Triples] lists every proposition of the form concept → linking phrase →
// concept. [WriteTriples] writes them one per line as "A, M, B". Texts are
// written verbatim; a comma inside a label makes the line ambiguous.
package io
