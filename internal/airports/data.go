package airports

// Coordinates are approximate gate and terminal positions, good enough
// for airport-scale distance math.
var airportGates = map[string]map[string]GateLocation{
	"DFW": {
		"A1": {Lat: 32.9002, Lng: -97.037, Terminal: "A"},
		"A2": {Lat: 32.9004, Lng: -97.0368, Terminal: "A"},
		"A3": {Lat: 32.9006, Lng: -97.0366, Terminal: "A"},
		"A10": {Lat: 32.901, Lng: -97.036, Terminal: "A"},
		"A15": {Lat: 32.9012, Lng: -97.0355, Terminal: "A"},
		"A20": {Lat: 32.9015, Lng: -97.035, Terminal: "A"},
		"A25": {Lat: 32.9018, Lng: -97.0345, Terminal: "A"},
		"A30": {Lat: 32.902, Lng: -97.034, Terminal: "A"},
		"A35": {Lat: 32.9022, Lng: -97.0335, Terminal: "A"},
		"A38": {Lat: 32.9024, Lng: -97.0332, Terminal: "A"},
		"B1": {Lat: 32.8975, Lng: -97.0382, Terminal: "B"},
		"B5": {Lat: 32.8978, Lng: -97.038, Terminal: "B"},
		"B10": {Lat: 32.898, Lng: -97.0375, Terminal: "B"},
		"B15": {Lat: 32.8982, Lng: -97.037, Terminal: "B"},
		"B20": {Lat: 32.8985, Lng: -97.0365, Terminal: "B"},
		"B22": {Lat: 32.8986, Lng: -97.0363, Terminal: "B"},
		"B25": {Lat: 32.8988, Lng: -97.036, Terminal: "B"},
		"B30": {Lat: 32.899, Lng: -97.0355, Terminal: "B"},
		"B35": {Lat: 32.8992, Lng: -97.035, Terminal: "B"},
		"B40": {Lat: 32.8995, Lng: -97.0345, Terminal: "B"},
		"B45": {Lat: 32.8998, Lng: -97.034, Terminal: "B"},
		"C1": {Lat: 32.895, Lng: -97.04, Terminal: "C"},
		"C5": {Lat: 32.8952, Lng: -97.0395, Terminal: "C"},
		"C10": {Lat: 32.8955, Lng: -97.039, Terminal: "C"},
		"C15": {Lat: 32.8958, Lng: -97.0385, Terminal: "C"},
		"C20": {Lat: 32.896, Lng: -97.038, Terminal: "C"},
		"C25": {Lat: 32.8962, Lng: -97.0375, Terminal: "C"},
		"C30": {Lat: 32.8965, Lng: -97.037, Terminal: "C"},
		"D1": {Lat: 32.8925, Lng: -97.042, Terminal: "D"},
		"D5": {Lat: 32.8928, Lng: -97.0415, Terminal: "D"},
		"D10": {Lat: 32.893, Lng: -97.041, Terminal: "D"},
		"D15": {Lat: 32.8932, Lng: -97.0405, Terminal: "D"},
		"D20": {Lat: 32.8935, Lng: -97.04, Terminal: "D"},
		"D25": {Lat: 32.8938, Lng: -97.0395, Terminal: "D"},
		"D30": {Lat: 32.894, Lng: -97.039, Terminal: "D"},
		"E1": {Lat: 32.89, Lng: -97.044, Terminal: "E"},
		"E5": {Lat: 32.8902, Lng: -97.0435, Terminal: "E"},
		"E10": {Lat: 32.8905, Lng: -97.043, Terminal: "E"},
		"E15": {Lat: 32.8908, Lng: -97.0425, Terminal: "E"},
		"E20": {Lat: 32.891, Lng: -97.042, Terminal: "E"},
		"E25": {Lat: 32.8912, Lng: -97.0415, Terminal: "E"},
		"E30": {Lat: 32.8915, Lng: -97.041, Terminal: "E"},
	},
	"ORD": {
		"B1": {Lat: 41.9792, Lng: -87.904, Terminal: "1"},
		"B5": {Lat: 41.9795, Lng: -87.9035, Terminal: "1"},
		"B10": {Lat: 41.9798, Lng: -87.903, Terminal: "1"},
		"B15": {Lat: 41.98, Lng: -87.9025, Terminal: "1"},
		"B20": {Lat: 41.9802, Lng: -87.902, Terminal: "1"},
		"C1": {Lat: 41.9805, Lng: -87.9015, Terminal: "1"},
		"C5": {Lat: 41.9808, Lng: -87.901, Terminal: "1"},
		"C10": {Lat: 41.981, Lng: -87.9005, Terminal: "1"},
		"E1": {Lat: 41.977, Lng: -87.906, Terminal: "2"},
		"E5": {Lat: 41.9772, Lng: -87.9055, Terminal: "2"},
		"E10": {Lat: 41.9775, Lng: -87.905, Terminal: "2"},
		"F1": {Lat: 41.9778, Lng: -87.9045, Terminal: "2"},
		"F5": {Lat: 41.978, Lng: -87.904, Terminal: "2"},
		"F10": {Lat: 41.9782, Lng: -87.9035, Terminal: "2"},
		"G1": {Lat: 41.975, Lng: -87.908, Terminal: "3"},
		"G5": {Lat: 41.9752, Lng: -87.9075, Terminal: "3"},
		"G10": {Lat: 41.9755, Lng: -87.907, Terminal: "3"},
		"H1": {Lat: 41.9758, Lng: -87.9065, Terminal: "3"},
		"H5": {Lat: 41.976, Lng: -87.906, Terminal: "3"},
		"H10": {Lat: 41.9762, Lng: -87.9055, Terminal: "3"},
		"K1": {Lat: 41.9765, Lng: -87.905, Terminal: "3"},
		"K5": {Lat: 41.9768, Lng: -87.9045, Terminal: "3"},
	},
	"LAX": {
		"40": {Lat: 33.9428, Lng: -118.406, Terminal: "4"},
		"41": {Lat: 33.943, Lng: -118.4058, Terminal: "4"},
		"42": {Lat: 33.9432, Lng: -118.4056, Terminal: "4"},
		"43": {Lat: 33.9434, Lng: -118.4054, Terminal: "4"},
		"44": {Lat: 33.9436, Lng: -118.4052, Terminal: "4"},
		"45": {Lat: 33.9438, Lng: -118.405, Terminal: "4"},
		"46": {Lat: 33.944, Lng: -118.4048, Terminal: "4"},
		"47": {Lat: 33.9442, Lng: -118.4046, Terminal: "4"},
		"48": {Lat: 33.9444, Lng: -118.4044, Terminal: "4"},
		"50": {Lat: 33.941, Lng: -118.408, Terminal: "5"},
		"51": {Lat: 33.9412, Lng: -118.4078, Terminal: "5"},
		"52": {Lat: 33.9414, Lng: -118.4076, Terminal: "5"},
		"53": {Lat: 33.9416, Lng: -118.4074, Terminal: "5"},
		"54": {Lat: 33.9418, Lng: -118.4072, Terminal: "5"},
		"55": {Lat: 33.942, Lng: -118.407, Terminal: "5"},
	},
	"JFK": {
		"1": {Lat: 40.644, Lng: -73.786, Terminal: "8"},
		"2": {Lat: 40.6442, Lng: -73.7858, Terminal: "8"},
		"3": {Lat: 40.6444, Lng: -73.7856, Terminal: "8"},
		"4": {Lat: 40.6446, Lng: -73.7854, Terminal: "8"},
		"5": {Lat: 40.6448, Lng: -73.7852, Terminal: "8"},
		"6": {Lat: 40.645, Lng: -73.785, Terminal: "8"},
		"7": {Lat: 40.6452, Lng: -73.7848, Terminal: "8"},
		"8": {Lat: 40.6454, Lng: -73.7846, Terminal: "8"},
		"9": {Lat: 40.6456, Lng: -73.7844, Terminal: "8"},
		"10": {Lat: 40.6458, Lng: -73.7842, Terminal: "8"},
	},
	"MIA": {
		"D1": {Lat: 25.796, Lng: -80.276, Terminal: "D"},
		"D5": {Lat: 25.7962, Lng: -80.2755, Terminal: "D"},
		"D10": {Lat: 25.7965, Lng: -80.275, Terminal: "D"},
		"D15": {Lat: 25.7968, Lng: -80.2745, Terminal: "D"},
		"D20": {Lat: 25.797, Lng: -80.274, Terminal: "D"},
		"D25": {Lat: 25.7972, Lng: -80.2735, Terminal: "D"},
		"D30": {Lat: 25.7975, Lng: -80.273, Terminal: "D"},
		"D35": {Lat: 25.7978, Lng: -80.2725, Terminal: "D"},
		"D40": {Lat: 25.798, Lng: -80.272, Terminal: "D"},
	},
	"PHX": {
		"A1": {Lat: 33.436, Lng: -112.008, Terminal: "4"},
		"A5": {Lat: 33.4362, Lng: -112.0075, Terminal: "4"},
		"A10": {Lat: 33.4365, Lng: -112.007, Terminal: "4"},
		"A15": {Lat: 33.4368, Lng: -112.0065, Terminal: "4"},
		"A20": {Lat: 33.437, Lng: -112.006, Terminal: "4"},
		"B1": {Lat: 33.434, Lng: -112.01, Terminal: "4"},
		"B5": {Lat: 33.4342, Lng: -112.0095, Terminal: "4"},
		"B10": {Lat: 33.4345, Lng: -112.009, Terminal: "4"},
		"B15": {Lat: 33.4348, Lng: -112.0085, Terminal: "4"},
		"B20": {Lat: 33.435, Lng: -112.008, Terminal: "4"},
	},
	"PIT": {
		"A1": {Lat: 40.4955, Lng: -80.2425, Terminal: "Airside"},
		"A5": {Lat: 40.4957, Lng: -80.242, Terminal: "Airside"},
		"A10": {Lat: 40.496, Lng: -80.2415, Terminal: "Airside"},
		"A15": {Lat: 40.4962, Lng: -80.241, Terminal: "Airside"},
		"A20": {Lat: 40.4965, Lng: -80.2405, Terminal: "Airside"},
		"B1": {Lat: 40.495, Lng: -80.242, Terminal: "Airside"},
		"B5": {Lat: 40.4952, Lng: -80.2415, Terminal: "Airside"},
		"B10": {Lat: 40.4955, Lng: -80.241, Terminal: "Airside"},
		"B15": {Lat: 40.4957, Lng: -80.2405, Terminal: "Airside"},
		"B20": {Lat: 40.496, Lng: -80.24, Terminal: "Airside"},
		"B22": {Lat: 40.4958, Lng: -80.2413, Terminal: "Airside"},
		"B25": {Lat: 40.4962, Lng: -80.2395, Terminal: "Airside"},
		"C1": {Lat: 40.4945, Lng: -80.243, Terminal: "Airside"},
		"C5": {Lat: 40.4947, Lng: -80.2425, Terminal: "Airside"},
		"C10": {Lat: 40.495, Lng: -80.242, Terminal: "Airside"},
	},
}

var airportTerminals = map[string]map[string]TerminalLocation{
	"DFW": {
		"A": {Lat: 32.901, Lng: -97.0355, Name: "Terminal A"},
		"B": {Lat: 32.8985, Lng: -97.0365, Name: "Terminal B"},
		"C": {Lat: 32.8958, Lng: -97.0385, Name: "Terminal C"},
		"D": {Lat: 32.8935, Lng: -97.04, Name: "Terminal D"},
		"E": {Lat: 32.8908, Lng: -97.0425, Name: "Terminal E"},
	},
	"ORD": {
		"1": {Lat: 41.98, Lng: -87.9025, Name: "Terminal 1"},
		"2": {Lat: 41.9775, Lng: -87.905, Name: "Terminal 2"},
		"3": {Lat: 41.9755, Lng: -87.907, Name: "Terminal 3"},
		"5": {Lat: 41.973, Lng: -87.909, Name: "Terminal 5 (International)"},
	},
	"PIT": {
		"Airside": {Lat: 40.4955, Lng: -80.2415, Name: "Airside Terminal"},
		"Landside": {Lat: 40.492, Lng: -80.237, Name: "Landside Terminal"},
	},
}

var airportGeofences = map[string]Geofence{
	"DFW": {Lat: 32.8968, Lng: -97.038, RadiusKm: 5, Name: "Dallas/Fort Worth International Airport"},
	"ORD": {Lat: 41.9742, Lng: -87.9073, RadiusKm: 4, Name: "O'Hare International Airport"},
	"LAX": {Lat: 33.9425, Lng: -118.4081, RadiusKm: 3, Name: "Los Angeles International Airport"},
	"JFK": {Lat: 40.6413, Lng: -73.7781, RadiusKm: 3, Name: "John F. Kennedy International Airport"},
	"MIA": {Lat: 25.7959, Lng: -80.287, RadiusKm: 3, Name: "Miami International Airport"},
	"PHX": {Lat: 33.4373, Lng: -112.0078, RadiusKm: 3, Name: "Phoenix Sky Harbor International Airport"},
	"CLT": {Lat: 35.214, Lng: -80.9431, RadiusKm: 3, Name: "Charlotte Douglas International Airport"},
	"DCA": {Lat: 38.8512, Lng: -77.0402, RadiusKm: 2, Name: "Ronald Reagan Washington National Airport"},
	"LGA": {Lat: 40.7769, Lng: -73.874, RadiusKm: 2, Name: "LaGuardia Airport"},
	"PIT": {Lat: 40.4958, Lng: -80.2413, RadiusKm: 3, Name: "Pittsburgh International Airport"},
}
