// Package editor implements the interaction layer of the concept map editor.
//
// A [Controller] sits between a UI shell and a [cmap.Document]. The shell
// forwards raw input (pointer presses in screen pixels, double-clicks,
// toolbar actions, zoom keys) and the controller applies the gestures:
//
//   - Primary press selects the topmost arrow near the pointer, else the
//     topmost node under it (and starts dragging it), else clears the
//     selection.
//   - Secondary press on a node picks an arrow source; a second secondary
//     press on another node completes the arrow. A press on empty canvas
//     abandons the pending source.
//   - Double-click on a node opens the inline label editor; on empty canvas
//     it creates a concept node at the default position.
//
// The shell reads back [Controller.Overlay] to place its text entry,
// [Controller.Cursor] for the pointer shape and [Controller.Revision] to
// decide when to repaint. Screen coordinates are document coordinates
// multiplied by the zoom factor.
package editor
