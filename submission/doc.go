// Package submission is the client side of assignment hand-in. A Packager
// collects the student's identity, free text and ordered attachments into a
// Payload and passes it to a Submitter; HTTPSubmitter sends it to the
// EduTrackr API as a multipart request.
package submission
