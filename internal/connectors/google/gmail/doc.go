// Package gmail implements the mailbox port over the Gmail API:
// listing unread mail, fetching and parsing messages, sending threaded
// replies and managing the push notification watch.
package gmail
