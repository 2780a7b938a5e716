/*
Package mipgen generates full mipmap chains for loaded textures on the CPU
and optionally re-encodes every level into a GPU-native BCn format.

Supported sources are single-level R8, RG8, RGBA8 and RGBA8-sRGB images.
Downsampling is a 2x2 box filter that decodes sRGB channels to linear light
before averaging, so gamma-encoded textures do not darken level by level.
Compression targets are fixed per source format: R8 maps to BC4, RG8 to BC5
and RGBA8 (linear or sRGB) to BC7.

Compressed level payloads are cached on disk under a content-derived
fingerprint so repeated runs skip the expensive encode step. The Pipeline
type runs the whole flow on a worker pool: the host submits discovered
images fire-and-forget and polls for finished results on its own thread.
*/
package mipgen
