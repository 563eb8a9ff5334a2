// Package wire defines the frame envelope and descriptor codec exchanged with
// the NotchBar host over the channel.
//
// Everything on the wire is JSON with stable snake_case field tags, one frame
// per binary message. Decoding starts from the documented-defaults template of
// each descriptor kind and overlays the payload, so fields a peer omits come
// back as their documented defaults rather than Go zero values.
package wire
