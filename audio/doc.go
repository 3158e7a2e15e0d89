// Package audio turns streamed meeting audio into transcript segments.
//
// Accumulator appends chunks to a per-meeting container file, Transcoder
// converts it to 16 kHz mono PCM with ffmpeg, and Pipeline runs transcode,
// transcription, persistence, archival and cleanup for one meeting at a time.
package audio
