package scan

import "strings"

// catalogEntry describes what a part-number prefix tells us about a part
// before anyone has typed in the details.
type catalogEntry struct {
	Prefix       string
	Manufacturer string
	Category     string
	Description  string
}

// catalog maps well-known part-number prefixes to manufacturer and category
// hints. Longest matching prefix wins, so "MAX" beats "M".
var catalog = []catalogEntry{
	{Prefix: "STM32", Manufacturer: "STMicroelectronics", Category: "Microcontrollers/Development Boards", Description: "STM32 32-bit ARM Cortex-M microcontroller"},
	{Prefix: "STM", Manufacturer: "STMicroelectronics", Category: "Integrated Circuits (ICs)", Description: "STMicroelectronics integrated circuit"},
	{Prefix: "ATMEGA", Manufacturer: "Microchip Technology", Category: "Microcontrollers/Development Boards", Description: "AVR 8-bit microcontroller"},
	{Prefix: "ATTINY", Manufacturer: "Microchip Technology", Category: "Microcontrollers/Development Boards", Description: "AVR 8-bit tinyAVR microcontroller"},
	{Prefix: "PIC", Manufacturer: "Microchip Technology", Category: "Microcontrollers/Development Boards", Description: "PIC microcontroller"},
	{Prefix: "ESP32", Manufacturer: "Espressif Systems", Category: "Microcontrollers/Development Boards", Description: "ESP32 Wi-Fi/Bluetooth SoC module"},
	{Prefix: "ESP8266", Manufacturer: "Espressif Systems", Category: "Microcontrollers/Development Boards", Description: "ESP8266 Wi-Fi SoC module"},
	{Prefix: "LM", Manufacturer: "Texas Instruments", Category: "Integrated Circuits (ICs)", Description: "Linear/analog integrated circuit"},
	{Prefix: "TL", Manufacturer: "Texas Instruments", Category: "Integrated Circuits (ICs)", Description: "Analog integrated circuit"},
	{Prefix: "NE555", Manufacturer: "Texas Instruments", Category: "Integrated Circuits (ICs)", Description: "555 timer IC"},
	{Prefix: "SN74", Manufacturer: "Texas Instruments", Category: "Integrated Circuits (ICs)", Description: "74-series logic IC"},
	{Prefix: "CD4", Manufacturer: "Texas Instruments", Category: "Integrated Circuits (ICs)", Description: "CD4000-series CMOS logic IC"},
	{Prefix: "MAX", Manufacturer: "Analog Devices", Category: "Integrated Circuits (ICs)", Description: "Maxim interface/analog IC"},
	{Prefix: "AD", Manufacturer: "Analog Devices", Category: "Integrated Circuits (ICs)", Description: "Analog Devices precision IC"},
	{Prefix: "MCP", Manufacturer: "Microchip Technology", Category: "Integrated Circuits (ICs)", Description: "Microchip analog/interface IC"},
	{Prefix: "IRF", Manufacturer: "Infineon Technologies", Category: "Transistors", Description: "Power MOSFET"},
	{Prefix: "IRL", Manufacturer: "Infineon Technologies", Category: "Transistors", Description: "Logic-level power MOSFET"},
	{Prefix: "BC", Manufacturer: "NXP Semiconductors", Category: "Transistors", Description: "Small-signal bipolar transistor"},
	{Prefix: "BD", Manufacturer: "STMicroelectronics", Category: "Transistors", Description: "Medium-power bipolar transistor"},
	{Prefix: "2N", Manufacturer: "ON Semiconductor", Category: "Transistors", Description: "General-purpose transistor"},
	{Prefix: "1N", Manufacturer: "ON Semiconductor", Category: "Diodes", Description: "General-purpose diode"},
	{Prefix: "TIP", Manufacturer: "STMicroelectronics", Category: "Transistors", Description: "Power bipolar transistor"},
	{Prefix: "CRCW", Manufacturer: "Vishay", Category: "Resistors", Description: "Thick-film chip resistor"},
	{Prefix: "ERJ", Manufacturer: "Panasonic", Category: "Resistors", Description: "Chip resistor"},
	{Prefix: "GRM", Manufacturer: "Murata", Category: "Capacitors", Description: "Multilayer ceramic chip capacitor"},
	{Prefix: "C0G", Manufacturer: "Murata", Category: "Capacitors", Description: "Ceramic capacitor"},
	{Prefix: "EEE", Manufacturer: "Panasonic", Category: "Capacitors", Description: "Aluminum electrolytic capacitor"},
	{Prefix: "SRR", Manufacturer: "Bourns", Category: "Inductors", Description: "Shielded power inductor"},
	{Prefix: "WSL", Manufacturer: "Vishay", Category: "Resistors", Description: "Current-sense resistor"},
	{Prefix: "DHT", Manufacturer: "Aosong", Category: "Sensors", Description: "Temperature/humidity sensor"},
	{Prefix: "BMP", Manufacturer: "Bosch Sensortec", Category: "Sensors", Description: "Barometric pressure sensor"},
	{Prefix: "BME", Manufacturer: "Bosch Sensortec", Category: "Sensors", Description: "Environmental sensor"},
	{Prefix: "MPU", Manufacturer: "TDK InvenSense", Category: "Sensors", Description: "Inertial measurement unit"},
	{Prefix: "HC-SR", Manufacturer: "Generic", Category: "Sensors", Description: "Ultrasonic/PIR sensor module"},
	{Prefix: "WS2812", Manufacturer: "Worldsemi", Category: "LEDs/Displays", Description: "Addressable RGB LED"},
	{Prefix: "SSD1306", Manufacturer: "Solomon Systech", Category: "LEDs/Displays", Description: "OLED display driver module"},
}

// identify resolves a normalized part number against the prefix catalog.
// Returns nil when no prefix matches.
func identify(partNumber string) *catalogEntry {
	var best *catalogEntry
	for i := range catalog {
		entry := &catalog[i]
		if !strings.HasPrefix(partNumber, entry.Prefix) {
			continue
		}
		if best == nil || len(entry.Prefix) > len(best.Prefix) {
			best = entry
		}
	}
	return best
}
