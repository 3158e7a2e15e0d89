// Package meeting owns the meeting aggregate: rooms, their transcript
// segments and the insight derived from them.
//
// Service implements the room lifecycle (create, join, end, status). Repository
// is the GORM persistence shared with the audio pipeline and the insight
// service.
package meeting
