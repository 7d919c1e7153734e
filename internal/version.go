package internal

// Version is the current cardfactory release.
const Version = "0.4.0"
