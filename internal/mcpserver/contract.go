package mcpserver

// DateFormatContract describes how LLM consumers must write reservation
// dates and how the ledger reports them back.
const DateFormatContract = `# Camera Ledger Date Format

Reservation dates are plain calendar days. There is no time of day and no time zone;
"today" is the server's local date.

## Accepted input

| Form      | Example     | Meaning                                                  |
|-----------|-------------|----------------------------------------------------------|
| ` + "`M/D`" + `     | ` + "`1/15`" + `      | Current year, or next year if that day is already past. |
| ` + "`Y/M/D`" + `   | ` + "`2026/1/15`" + ` | Exactly that day.                                        |

Spaces around the numbers are ignored. Leading zeros are allowed (` + "`01/05`" + `).
Anything else is rejected with "invalid date format".

## Rules

1. A reservation covers the closed interval start..end. Both days are included.
2. The start date must be today or later. Ranges are rejected when end is before start.
3. Two reservations of the same camera may not share any day. A reservation ending on
   1/20 and one starting on 1/20 conflict.
4. A camera is **checked out** while today falls inside one of its reservations.

## Output

- Stored dates are canonical ` + "`Y/M/D`" + ` without zero padding (` + "`2026/1/5`" + `).
- Periods are displayed as ` + "`M/D ～ M/D`" + ` (fullwidth tilde).
- To cancel a reservation, pass the stored ` + "`Y/M/D`" + ` dates exactly as listed.
`
