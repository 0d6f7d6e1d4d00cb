package cad

// DefaultProgID is the COM class AutoCAD registers for automation.
const DefaultProgID = "AutoCAD.Application"
