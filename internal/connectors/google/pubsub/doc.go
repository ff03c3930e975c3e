// Package pubsub receives Gmail push notifications from a Cloud
// Pub/Sub pull subscription and feeds them to the processing pipeline.
package pubsub
