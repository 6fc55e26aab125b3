package grammar

import (
	"fmt"
	"regexp"
	"strings"

	"golang-txnlog-normalizer/internal/fields"
	"golang-txnlog-normalizer/internal/models"
)

// layoutBuilder constructs the nine layout grammars, sharing one injected
// field cleaner across all binders.
type layoutBuilder struct {
	cleaner *fields.Cleaner
}

func (b layoutBuilder) cleanTo(target *string, value string) {
	if cleaned := b.cleaner.Clean(value); cleaned != nil {
		*target = *cleaned
	}
}

// doubleColon recognizes the double-colon-delimited layout.
//
//	2023-05-14 14:05:31::user123::top-up::500::ATM Location::Device
func (b layoutBuilder) doubleColon() *Grammar {
	return &Grammar{
		name:    "double-colon",
		pattern: regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})::(\w+)::([\w-]+)::([\d,.]+)::([^:]+)::(.+)$`),
		bind: func(g []string, rec *models.ParsedRecord) error {
			rec.Datetime = fields.ParseTimestamp(g[1])
			rec.UserID = &g[2]
			rec.TransactionType = &g[3]
			amount := fields.ExtractAmount(g[4])
			rec.Amount = amount.Amount
			rec.Currency = amount.Currency
			b.cleanTo(&rec.Location, g[5])
			b.cleanTo(&rec.Device, g[6])
			return nil
		},
	}
}

// userPipe recognizes the pipe-delimited layout with a usr: prefix.
//
//	usr:user123|top-up|£500|Location|2023-05-14 14:05:31|Device
func (b layoutBuilder) userPipe() *Grammar {
	return &Grammar{
		name:    "user-pipe",
		pattern: regexp.MustCompile(`^usr:(\w+)\|([\w-]+)\|([€£$]?[\d,.]+)\|([^|]+)\|(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\|(.+)$`),
		bind: func(g []string, rec *models.ParsedRecord) error {
			rec.UserID = &g[1]
			rec.TransactionType = &g[2]
			amount := fields.ExtractAmount(g[3])
			rec.Amount = amount.Amount
			rec.Currency = amount.Currency
			b.cleanTo(&rec.Location, g[4])
			rec.Datetime = fields.ParseTimestamp(g[5])
			b.cleanTo(&rec.Device, g[6])
			return nil
		},
	}
}

// arrowNarrative recognizes the arrow/bracket narrative layout. Dashes in
// the action become underscores in the transaction type.
//
//	2023-05-14 14:05:31 >> [user123] did top-up - amt=£500 - Location // dev:Device
func (b layoutBuilder) arrowNarrative() *Grammar {
	return &Grammar{
		name:    "arrow-narrative",
		pattern: regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}) >> \[(\w+)\] did ([\w-]+) - amt=([€£$]?[\d,.]+) - ([^/]+) // dev:(.+)$`),
		bind: func(g []string, rec *models.ParsedRecord) error {
			rec.Datetime = fields.ParseTimestamp(g[1])
			rec.UserID = &g[2]
			txType := strings.ReplaceAll(g[3], "-", "_")
			rec.TransactionType = &txType
			amount := fields.ExtractAmount(g[4])
			rec.Amount = amount.Amount
			rec.Currency = amount.Currency
			b.cleanTo(&rec.Location, g[5])
			b.cleanTo(&rec.Device, g[6])
			return nil
		},
	}
}

// labeledPipe recognizes the pipe layout with user:/txn:/device: labels.
//
//	2023-05-14 14:05:31 | user: user123 | txn: top-up of £500 from Location | device: Device
func (b layoutBuilder) labeledPipe() *Grammar {
	return &Grammar{
		name:    "labeled-pipe",
		pattern: regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}) \| user: (\w+) \| txn: ([\w-]+) of ([€£$]?[\d,.]+) from ([^|]+) \| device: (.+)$`),
		bind: func(g []string, rec *models.ParsedRecord) error {
			rec.Datetime = fields.ParseTimestamp(g[1])
			rec.UserID = &g[2]
			rec.TransactionType = &g[3]
			amount := fields.ExtractAmount(g[4])
			rec.Amount = amount.Amount
			rec.Currency = amount.Currency
			b.cleanTo(&rec.Location, g[5])
			b.cleanTo(&rec.Device, g[6])
			return nil
		},
	}
}

// labeledDash recognizes the dash layout with user=/action=/ATM:/device=
// labels.
//
//	2023-05-14 14:05:31 - user=user123 - action=top-up £500 - ATM: Location - device=Device
func (b layoutBuilder) labeledDash() *Grammar {
	return &Grammar{
		name:    "labeled-dash",
		pattern: regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}) - user=(\w+) - action=([\w-]+) ([€£$]?[\d,.]+) - ATM: ([^-]+) - device=(.+)$`),
		bind: func(g []string, rec *models.ParsedRecord) error {
			rec.Datetime = fields.ParseTimestamp(g[1])
			rec.UserID = &g[2]
			rec.TransactionType = &g[3]
			amount := fields.ExtractAmount(g[4])
			rec.Amount = amount.Amount
			rec.Currency = amount.Currency
			b.cleanTo(&rec.Location, g[5])
			b.cleanTo(&rec.Device, g[6])
			return nil
		},
	}
}

// tripleColonLegacy recognizes the triple-colon/asterisk legacy layout
// with DD/MM/YYYY timestamps and the currency symbol before the amount.
// The uppercase action is lowercased.
//
//	14/05/2023 14:05:31 ::: user123 *** TOP-UP ::: amt:£500 @ Location <Device>
func (b layoutBuilder) tripleColonLegacy() *Grammar {
	return &Grammar{
		name:    "triple-colon-legacy",
		pattern: regexp.MustCompile(`^(\d{2}/\d{2}/\d{4} \d{2}:\d{2}:\d{2}) ::: (\w+) \*\*\* ([\w-]+) ::: amt:([€£$]?[\d,.]+) @ ([^<]+) <([^>]+)>$`),
		bind: func(g []string, rec *models.ParsedRecord) error {
			rec.Datetime = fields.ParseTimestamp(g[1])
			rec.UserID = &g[2]
			txType := strings.ToLower(g[3])
			rec.TransactionType = &txType
			amount := fields.ExtractAmount(g[4])
			rec.Amount = amount.Amount
			rec.Currency = amount.Currency
			b.cleanTo(&rec.Location, g[5])
			b.cleanTo(&rec.Device, g[6])
			return nil
		},
	}
}

// positional recognizes the simple whitespace-separated layout. The
// amount group is already isolated, so a malformed numeric token is an
// extraction failure rather than a silent null.
//
//	user123 2023-05-14 14:05:31 top-up 500 Location Device
func (b layoutBuilder) positional() *Grammar {
	return &Grammar{
		name:    "positional",
		pattern: regexp.MustCompile(`^(\w+) (\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}) ([\w-]+) ([\d,.]+) (\S+) (.+)$`),
		bind: func(g []string, rec *models.ParsedRecord) error {
			rec.UserID = &g[1]
			rec.Datetime = fields.ParseTimestamp(g[2])
			rec.TransactionType = &g[3]
			value, ok := fields.ParseAmountValue(g[4])
			if !ok {
				return fmt.Errorf("malformed amount token %q", g[4])
			}
			rec.Amount = &value
			rec.Currency = models.CurrencyGBP
			b.cleanTo(&rec.Location, g[5])
			b.cleanTo(&rec.Device, g[6])
			return nil
		},
	}
}

// tripleColonSuffix recognizes the triple-colon layout where the currency
// symbol follows the amount.
//
//	14/05/2023 14:05:31 ::: user123 *** TOP-UP ::: amt:500£ @ Location <Device>
func (b layoutBuilder) tripleColonSuffix() *Grammar {
	return &Grammar{
		name:    "triple-colon-suffix",
		pattern: regexp.MustCompile(`^(\d{2}/\d{2}/\d{4} \d{2}:\d{2}:\d{2}) ::: (\w+) \*\*\* ([\w-]+) ::: amt:([\d,.]+)([€£$]) @ ([^<]+) <([^>]+)>$`),
		bind: func(g []string, rec *models.ParsedRecord) error {
			rec.Datetime = fields.ParseTimestamp(g[1])
			rec.UserID = &g[2]
			txType := strings.ToLower(g[3])
			rec.TransactionType = &txType
			value, ok := fields.ParseAmountValue(g[4])
			if !ok {
				return fmt.Errorf("malformed amount token %q", g[4])
			}
			rec.Amount = &value
			rec.Currency = fields.CurrencyFromToken(g[5])
			b.cleanTo(&rec.Location, g[6])
			b.cleanTo(&rec.Device, g[7])
			return nil
		},
	}
}

// tripleColonMojibake is identical to tripleColonSuffix except the
// currency symbol may arrive as a corrupted multi-byte sequence, which is
// repaired by the cleaner before resolution.
//
//	04/07/2025 00:41:51 ::: user1044 *** REFUND ::: amt:3491.94â‚¬ @ Manchester <Huawei P30>
func (b layoutBuilder) tripleColonMojibake() *Grammar {
	return &Grammar{
		name:    "triple-colon-mojibake",
		pattern: regexp.MustCompile(`^(\d{2}/\d{2}/\d{4} \d{2}:\d{2}:\d{2}) ::: (\w+) \*\*\* ([\w-]+) ::: amt:([\d,.]+)(â‚¬|€|£|Â£|\$) @ ([^<]+) <([^>]+)>$`),
		bind: func(g []string, rec *models.ParsedRecord) error {
			rec.Datetime = fields.ParseTimestamp(g[1])
			rec.UserID = &g[2]
			txType := strings.ToLower(g[3])
			rec.TransactionType = &txType
			value, ok := fields.ParseAmountValue(g[4])
			if !ok {
				return fmt.Errorf("malformed amount token %q", g[4])
			}
			rec.Amount = &value
			symbol := ""
			if cleaned := b.cleaner.Clean(g[5]); cleaned != nil {
				symbol = *cleaned
			}
			rec.Currency = fields.CurrencyFromToken(symbol)
			b.cleanTo(&rec.Location, g[6])
			b.cleanTo(&rec.Device, g[7])
			return nil
		},
	}
}
