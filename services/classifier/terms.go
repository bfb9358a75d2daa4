package classifier

// boutiqueLabels are specialty home-video publishers whose presence in a
// listing title strongly signals a collectible edition. Matching is
// whole-word and case-insensitive; more specific names come before their
// short forms so the reported label is the fullest one that matched.
var boutiqueLabels = []string{
	// Major boutique labels
	"Criterion Collection", "Criterion",
	"Arrow Video", "Arrow Academy", "Arrow Films",
	"Kino Lorber", "Kino Classics", "Kino Cult",
	"Shout Factory", "Shout! Factory", "Scream Factory", "Shout Select",
	"Vinegar Syndrome", "VS",

	// UK boutique labels
	"BFI", "British Film Institute",
	"Masters of Cinema", "Eureka Entertainment", "Eureka",
	"Indicator", "Indicator Series", "Powerhouse Films", "Powerhouse Indicator",
	"Second Sight", "Second Sight Films",
	"88 Films", "88 Asia",
	"Radiance Films", "Radiance",
	"101 Films",
	"Studiocanal", "Studio Canal",
	"Network Distributing", "Network",
	"Fabulous Films",
	"Signal One", "Signal One Entertainment",

	// US boutique labels
	"Blue Underground",
	"Severin Films", "Severin",
	"Synapse Films", "Synapse",
	"Grindhouse Releasing",
	"Code Red", "Code Red DVD",
	"Unearthed Films", "Unearthed Classics",
	"AGFA", "American Genre Film Archive",
	"Cult Epics",
	"CAV", "CAV Distributing",
	"Dark Force Entertainment",
	"Full Moon Features", "Full Moon",
	"Massacre Video",
	"Saturn's Core",
	"Terror Vision",
	"Visual Vengeance",
	"Intervision", "Intervision Picture Corp",
	"Mondo Macabro",
	"Mondo",
	"Raro Video",
	"Camera Obscura",
	"Altered Innocence",
	"Cinelicious Pics",
	"Dekanalog",
	"DiabolikDVD", "Diabolik",
	"Distribution Solutions",
	"Distribpix",
	"Garagehouse Pictures",
	"Gold Ninja Video",
	"Hemlock Films",
	"JVTVX",
	"Kitten Media",
	"MVD", "MVD Rewind", "MVD Visual", "MVD Entertainment",
	"Olive Films",
	"Oscilloscope", "Oscilloscope Laboratories",
	"Scorpion Releasing",
	"Shudder", "Shudder Exclusive",
	"Utopia Distribution",
	"Vinegar Syndrome Labs",
	"Wild Eye Releasing",

	// Premium/collector labels
	"Twilight Time",
	"Fun City Editions",
	"Arbelos", "Arbelos Films",
	"Deaf Crocodile",
	"Le Chat Qui Fume",
	"Imprint", "Imprint Films", "Via Vision",
	"Explosive Media",
	"Wicked Vision",
	"Nameless Media",
	"NSM Records",
	"OFDb Filmworks",
	"Subkultur", "Subkultur Entertainment",
	"Anolis Entertainment",
	"Camera Obscura Mediabook",
	"Capelight Pictures",
	"Filmconfect",
	"Koch Media", "Koch Films",
	"Plaion Pictures",
	"Turbine Media", "Turbine Medien",

	// Classic/archive labels
	"Warner Archive", "Warner Archive Collection", "WAC",
	"Cohen Film Collection", "Cohen Media Group",
	"Film Movement", "Film Movement Classics",
	"Flicker Alley",
	"Milestone Films", "Milestone",
	"Music Box Films",
	"Drafthouse Films",
	"MUBI",
	"Janus Films",
	"Grasshopper Film",
	"Icarus Films",
	"Kino Marquee",
	"Magnolia Pictures",
	"Metrograph Pictures",
	"NEON",
	"Photon Films",
	"Strand Releasing",

	// International boutique
	"Carlotta Films",
	"Gaumont",
	"Pathe",
	"Wild Side Video",
	"Elephant Films",
	"ESC Editions",
	"Rimini Editions",
	"Sidonis Calysta",
	"Spectrum Films",
	"CG Entertainment",
	"Midnight Factory",
	"Plaion",
	"Entertainment One", "eOne",
	"Umbrella Entertainment",
	"Madman Entertainment", "Madman",
	"Beyond Home Entertainment",
	"Shock Entertainment",
}

// editionKeywords signal a special edition when no boutique label matched.
var editionKeywords = []string{
	"criterion", "collector", "collector's", "collectors",
	"limited edition", "limited", "special edition",
	"steelbook", "steel book",
	"director's cut", "directors cut",
	"anniversary", "restored", "remastered", "remaster",
	"ultimate edition", "deluxe", "premium",
	"box set", "boxset", "complete series", "complete collection",
	"slipcover", "slip cover", "mediabook",
	"digipack", "digipak",
	"booklet", "with booklet",
	"arrow exclusive", "shout exclusive",
}

// excludeKeywords disqualify a listing outright: competing lower-value
// formats, retail-exclusive repackagings, rental/used copies, obsolete
// formats and unauthorized copies. Exclusion takes precedence over every
// other rule.
var excludeKeywords = []string{
	// DVD format - only Blu-ray and 4K qualify
	"dvd",
	// Standard editions
	"standard edition", "regular edition",
	// Retail exclusives (usually just different cover art)
	"walmart exclusive",
	"target exclusive",
	"best buy exclusive",
	// Digital/streaming
	"digital code", "digital copy", "digital download",
	"streaming", "digital only",
	// Used/rental
	"rental", "previously viewed", "used", "pre-owned",
	"ex-rental", "ex rental",
	// Obsolete formats
	"vhs", "videotape", "laserdisc", "hd dvd", "hd-dvd",
	// Bootlegs/unauthorized
	"region free only", "all region", "bootleg",
	"unauthorized", "import copy",
}

// formatPatterns detect the media format. 4K patterns are evaluated first
// because listings routinely name multiple formats.
var formatPatterns = map[Format][]string{
	Format4KUHD:  {`4k\s*u?h?d?`, `ultra\s*hd`, `4k\s*blu-?ray`, `uhd`},
	FormatBluRay: {`blu-?ray`, `bluray`, `\bbd\b`},
	FormatDVD:    {`\bdvd\b`},
}
