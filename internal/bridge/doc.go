// Package bridge contains the device-facing logic of the television
// bridge: per-device controllers, the channel number resolver, the power
// poll monitor, and the fleet reconciler.
//
// One Controller owns one television. It exposes the device to the hub
// over MQTT (retained state topic), keeps the accessory directory entry
// current, and delegates protocol calls to a bravia client. Inbound
// commands arrive through the Dispatcher, which holds a single wildcard
// subscription and routes by the accessory ID in the topic. The
// Reconciler runs once at startup to align the directory with the
// configured fleet and hands the resulting accessories to controllers.
//
// All components stop via the done-channel/WaitGroup pattern and are safe
// to Stop more than once.
package bridge
