package httphandler

const MaxPayloadBytes = maxPayloadBytes
