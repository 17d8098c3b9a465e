package config

type JournalKeyStruct struct {
	ViolationQueue string
}

var JournalKey = &JournalKeyStruct{
	ViolationQueue: "proctor_violations_queue",
}
